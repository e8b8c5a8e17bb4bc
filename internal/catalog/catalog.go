package catalog

import (
	"context"

	"egile/internal/model"
)

// Store is the catalog capability the assistant operates on. The in-memory
// backend and the PostgreSQL repository both implement it; everything above
// this interface is backend-agnostic. Lookup methods return (nil, nil) when
// the record does not exist; an error means the lookup itself failed.
type Store interface {
	// Products
	CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	SearchProducts(ctx context.Context, req model.SearchProductsRequest) ([]model.Product, error)
	UpdateStock(ctx context.Context, productID string, quantity int, op model.StockOp) (*model.Product, error)
	LowStockProducts(ctx context.Context, threshold int) ([]model.Product, error)

	// Customers
	CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)

	// Orders
	CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)

	// Analytics
	BestCustomer(ctx context.Context) (*model.CustomerSpend, error)
	MostSoldProducts(ctx context.Context, limit int) ([]model.ProductSales, error)
	MostExpensiveProducts(ctx context.Context, limit int) ([]model.Product, error)
}
