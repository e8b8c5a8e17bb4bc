package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"egile/internal/model"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs tests, the
// terminal client and deployments that run without PostgreSQL.
type MemoryStore struct {
	mu sync.RWMutex

	products  map[string]model.Product
	customers map[string]model.Customer
	orders    map[string]model.Order
	bySKU     map[string]string // upper SKU -> product id
	byEmail   map[string]string // lower email -> customer id

	productSeq  int
	customerSeq int
	orderSeq    int

	currency string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory catalog
func NewMemoryStore(defaultCurrency string) *MemoryStore {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &MemoryStore{
		products:  make(map[string]model.Product),
		customers: make(map[string]model.Customer),
		orders:    make(map[string]model.Order),
		bySKU:     make(map[string]string),
		byEmail:   make(map[string]string),
		currency:  defaultCurrency,
	}
}

// CreateProduct adds a product to the catalog
func (s *MemoryStore) CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if _, exists := s.bySKU[sku]; exists {
		return nil, fmt.Errorf("product with sku %s already exists", sku)
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	s.productSeq++
	now := time.Now().UTC()
	p := model.Product{
		ID:            fmt.Sprintf("prod_%06d", s.productSeq),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		Currency:      currency,
		SKU:           sku,
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.products[p.ID] = p
	s.bySKU[sku] = p.ID

	return &p, nil
}

// GetProduct looks a product up by id
func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetProductBySKU looks a product up by SKU (case-insensitive)
func (s *MemoryStore) GetProductBySKU(ctx context.Context, sku string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySKU[strings.ToUpper(strings.TrimSpace(sku))]
	if !ok {
		return nil, nil
	}
	p := s.products[id]
	return &p, nil
}

// ListProducts returns all products ordered by id
func (s *MemoryStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SearchProducts matches the query against name, description, category and
// SKU, then applies the structured filters
func (s *MemoryStore) SearchProducts(ctx context.Context, req model.SearchProductsRequest) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(req.Query))
	var out []model.Product
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if query != "" && !productMatches(p, query) {
			continue
		}
		if req.Category != nil && !strings.EqualFold(p.Category, *req.Category) {
			continue
		}
		if req.PriceMin != nil && p.Price < *req.PriceMin {
			continue
		}
		if req.PriceMax != nil && p.Price > *req.PriceMax {
			continue
		}
		if req.InStockOnly && p.StockQuantity <= 0 {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func productMatches(p model.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Category), query) {
		return true
	}
	return strings.Contains(strings.ToLower(p.SKU), query)
}

// UpdateStock applies a set, add or subtract operation to a product's stock
func (s *MemoryStore) UpdateStock(ctx context.Context, productID string, quantity int, op model.StockOp) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found", productID)
	}

	switch op {
	case model.StockOpSet:
		if quantity < 0 {
			return nil, fmt.Errorf("stock level cannot be negative")
		}
		p.StockQuantity = quantity
	case model.StockOpAdd:
		p.StockQuantity += quantity
	case model.StockOpSubtract:
		if p.StockQuantity < quantity {
			return nil, fmt.Errorf("insufficient stock for %s: have %d, subtract %d", p.Name, p.StockQuantity, quantity)
		}
		p.StockQuantity -= quantity
	default:
		return nil, fmt.Errorf("unsupported stock operation: %s", op)
	}

	p.UpdatedAt = time.Now().UTC()
	s.products[productID] = p
	return &p, nil
}

// LowStockProducts returns active products at or below the threshold
func (s *MemoryStore) LowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Product
	for _, p := range s.products {
		if p.IsActive && p.StockQuantity <= threshold {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StockQuantity < out[j].StockQuantity })
	return out, nil
}

// CreateCustomer adds a customer account
func (s *MemoryStore) CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, exists := s.byEmail[email]; exists {
		return nil, fmt.Errorf("customer with email %s already exists", email)
	}

	s.customerSeq++
	now := time.Now().UTC()
	c := model.Customer{
		ID:        fmt.Sprintf("cust_%06d", s.customerSeq),
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     req.Phone,
		Address:   req.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.customers[c.ID] = c
	s.byEmail[email] = c.ID

	return &c, nil
}

// GetCustomer looks a customer up by id
func (s *MemoryStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetCustomerByEmail looks a customer up by email (case-insensitive)
func (s *MemoryStore) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	c := s.customers[id]
	return &c, nil
}

// ListCustomers returns all customers ordered by id
func (s *MemoryStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreateOrder validates the request, prices the items from the current
// catalog, decrements stock and records the order as pending
func (s *MemoryStore) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[req.CustomerID]; !ok {
		return nil, fmt.Errorf("customer %s not found", req.CustomerID)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	// Validate everything before touching stock
	for _, item := range req.Items {
		p, ok := s.products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s not found", item.ProductID)
		}
		if item.Quantity < 1 {
			return nil, fmt.Errorf("quantity for %s must be at least 1", p.Name)
		}
		if p.StockQuantity < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s: have %d, need %d", p.Name, p.StockQuantity, item.Quantity)
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	now := time.Now().UTC()
	var items []model.OrderItem
	var total float64
	for _, item := range req.Items {
		p := s.products[item.ProductID]
		line := model.OrderItem{
			ProductID:  p.ID,
			Quantity:   item.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: roundCents(p.Price * float64(item.Quantity)),
		}
		items = append(items, line)
		total += line.TotalPrice

		p.StockQuantity -= item.Quantity
		p.UpdatedAt = now
		s.products[p.ID] = p
	}

	s.orderSeq++
	o := model.Order{
		ID:          fmt.Sprintf("order_%06d", s.orderSeq),
		CustomerID:  req.CustomerID,
		Items:       items,
		TotalAmount: roundCents(total),
		Currency:    currency,
		Status:      model.OrderStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.orders[o.ID] = o

	out := o
	out.Items = append([]model.OrderItem(nil), items...)
	return &out, nil
}

// GetOrder looks an order up by id
func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	out := o
	out.Items = append([]model.OrderItem(nil), o.Items...)
	return &out, nil
}

// ListOrders returns all orders, newest first
func (s *MemoryStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		cp := o
		cp.Items = append([]model.OrderItem(nil), o.Items...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateOrderStatus moves an order to a new lifecycle state
func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}
	o, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found", orderID)
	}

	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	s.orders[orderID] = o

	out := o
	out.Items = append([]model.OrderItem(nil), o.Items...)
	return &out, nil
}

// BestCustomer returns the customer with the highest total spend across
// non-cancelled orders, or (nil, nil) when there are no orders
func (s *MemoryStore) BestCustomer(ctx context.Context) (*model.CustomerSpend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]*model.CustomerSpend)
	for _, o := range s.orders {
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		agg, ok := totals[o.CustomerID]
		if !ok {
			c := s.customers[o.CustomerID]
			agg = &model.CustomerSpend{Customer: c}
			totals[o.CustomerID] = agg
		}
		agg.OrderCount++
		agg.TotalSpent = roundCents(agg.TotalSpent + o.TotalAmount)
	}

	var best *model.CustomerSpend
	for _, agg := range totals {
		if best == nil || agg.TotalSpent > best.TotalSpent ||
			(agg.TotalSpent == best.TotalSpent && agg.ID < best.ID) {
			best = agg
		}
	}
	return best, nil
}

// MostSoldProducts returns products ranked by units sold across
// non-cancelled orders
func (s *MemoryStore) MostSoldProducts(ctx context.Context, limit int) ([]model.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	units := make(map[string]int)
	for _, o := range s.orders {
		if o.Status == model.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			units[item.ProductID] += item.Quantity
		}
	}

	out := make([]model.ProductSales, 0, len(units))
	for id, sold := range units {
		p, ok := s.products[id]
		if !ok {
			continue
		}
		out = append(out, model.ProductSales{Product: p, UnitsSold: sold})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UnitsSold == out[j].UnitsSold {
			return out[i].ID < out[j].ID
		}
		return out[i].UnitsSold > out[j].UnitsSold
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MostExpensiveProducts returns active products ranked by price
func (s *MemoryStore) MostExpensiveProducts(ctx context.Context, limit int) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	var out []model.Product
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Price == out[j].Price {
			return out[i].ID < out[j].ID
		}
		return out[i].Price > out[j].Price
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
