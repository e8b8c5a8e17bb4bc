package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Product represents a catalog product
type Product struct {
	ID            string          `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         float64         `json:"price" db:"price"`
	Currency      string          `json:"currency" db:"currency"`
	SKU           string          `json:"sku" db:"sku"`
	Category      string          `json:"category" db:"category"`
	StockQuantity int             `json:"stock_quantity" db:"stock_quantity"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	Embedding     pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// Customer represents a customer account
type Customer struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Address   JSONMap   `json:"address,omitempty" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName returns the customer's display name
func (c Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a customer order with its line items
type Order struct {
	ID          string      `json:"id" db:"id"`
	CustomerID  string      `json:"customer_id" db:"customer_id"`
	Items       []OrderItem `json:"items" db:"-"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	Currency    string      `json:"currency" db:"currency"`
	Status      OrderStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is one product line within an order
type OrderItem struct {
	ProductID  string  `json:"product_id" db:"product_id"`
	Quantity   int     `json:"quantity" db:"quantity"`
	UnitPrice  float64 `json:"unit_price" db:"unit_price"`
	TotalPrice float64 `json:"total_price" db:"total_price"`
}

// StockOp selects how a stock update is applied
type StockOp string

const (
	StockOpSet      StockOp = "set"
	StockOpAdd      StockOp = "add"
	StockOpSubtract StockOp = "subtract"
)

// IsValid reports whether the operation is supported
func (op StockOp) IsValid() bool {
	switch op {
	case StockOpSet, StockOpAdd, StockOpSubtract:
		return true
	}
	return false
}

// CustomerSpend is a customer with aggregated order totals
type CustomerSpend struct {
	Customer
	OrderCount int     `json:"order_count" db:"order_count"`
	TotalSpent float64 `json:"total_spent" db:"total_spent"`
}

// ProductSales is a product with aggregated sold quantities
type ProductSales struct {
	Product
	UnitsSold int `json:"units_sold" db:"units_sold"`
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), j)
	}
	return json.Unmarshal(bytes, j)
}
