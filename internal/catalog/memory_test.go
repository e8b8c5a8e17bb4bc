package catalog

import (
	"context"
	"testing"

	"egile/internal/model"
)

func seedProducts(t *testing.T, s *MemoryStore) (mic, laptop *model.Product) {
	t.Helper()
	ctx := context.Background()

	mic, err := s.CreateProduct(ctx, model.CreateProductRequest{
		Name: "Microphone Egile", Description: "Studio microphone",
		Price: 129.99, SKU: "MIC-EGILE-001", Category: "electronics", StockQuantity: 10,
	})
	if err != nil {
		t.Fatalf("create mic: %v", err)
	}
	laptop, err = s.CreateProduct(ctx, model.CreateProductRequest{
		Name: "Test Laptop", Description: "Developer laptop",
		Price: 999.99, SKU: "LAP-TEST-001", Category: "electronics", StockQuantity: 5,
	})
	if err != nil {
		t.Fatalf("create laptop: %v", err)
	}
	return mic, laptop
}

func TestMemoryStoreProducts(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()
	mic, _ := seedProducts(t, s)

	if mic.ID != "prod_000001" {
		t.Errorf("first product id = %s, want prod_000001", mic.ID)
	}
	if !mic.IsActive || mic.Currency != "USD" {
		t.Errorf("product defaults wrong: %+v", mic)
	}

	// Duplicate SKU rejected, case-insensitively.
	if _, err := s.CreateProduct(ctx, model.CreateProductRequest{
		Name: "Other", SKU: "mic-egile-001", Price: 1,
	}); err == nil {
		t.Error("duplicate sku accepted")
	}

	// Lookup by id, by SKU and miss behavior.
	got, err := s.GetProduct(ctx, mic.ID)
	if err != nil || got == nil || got.Name != "Microphone Egile" {
		t.Errorf("GetProduct = (%+v, %v)", got, err)
	}
	got, err = s.GetProductBySKU(ctx, "mic-egile-001")
	if err != nil || got == nil || got.ID != mic.ID {
		t.Errorf("GetProductBySKU = (%+v, %v)", got, err)
	}
	got, err = s.GetProduct(ctx, "prod_999999")
	if err != nil || got != nil {
		t.Errorf("missing product = (%+v, %v), want (nil, nil)", got, err)
	}

	products, err := s.ListProducts(ctx)
	if err != nil || len(products) != 2 {
		t.Errorf("ListProducts = %d products, %v", len(products), err)
	}
}

func TestMemoryStoreSearchProducts(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()
	seedProducts(t, s)

	tests := []struct {
		name string
		req  model.SearchProductsRequest
		want int
	}{
		{"by name", model.SearchProductsRequest{Query: "microphone"}, 1},
		{"case-insensitive", model.SearchProductsRequest{Query: "MICROPHONE"}, 1},
		{"by category", model.SearchProductsRequest{Query: "electronics"}, 2},
		{"by sku fragment", model.SearchProductsRequest{Query: "lap-test"}, 1},
		{"price max", model.SearchProductsRequest{Query: "electronics", PriceMax: f64(500)}, 1},
		{"price min", model.SearchProductsRequest{Query: "electronics", PriceMin: f64(500)}, 1},
		{"no match", model.SearchProductsRequest{Query: "xyzzy"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchProducts(ctx, tt.req)
			if err != nil {
				t.Fatalf("SearchProducts: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d products, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMemoryStoreUpdateStock(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()
	mic, _ := seedProducts(t, s)

	p, err := s.UpdateStock(ctx, mic.ID, 5, model.StockOpAdd)
	if err != nil || p.StockQuantity != 15 {
		t.Errorf("add: stock = %d, %v; want 15", p.StockQuantity, err)
	}
	p, err = s.UpdateStock(ctx, mic.ID, 3, model.StockOpSubtract)
	if err != nil || p.StockQuantity != 12 {
		t.Errorf("subtract: stock = %d, %v; want 12", p.StockQuantity, err)
	}
	p, err = s.UpdateStock(ctx, mic.ID, 40, model.StockOpSet)
	if err != nil || p.StockQuantity != 40 {
		t.Errorf("set: stock = %d, %v; want 40", p.StockQuantity, err)
	}

	if _, err := s.UpdateStock(ctx, mic.ID, 100, model.StockOpSubtract); err == nil {
		t.Error("subtracting below zero accepted")
	}
	if _, err := s.UpdateStock(ctx, mic.ID, -1, model.StockOpSet); err == nil {
		t.Error("negative absolute level accepted")
	}
	if _, err := s.UpdateStock(ctx, "prod_999999", 1, model.StockOpAdd); err == nil {
		t.Error("unknown product accepted")
	}
}

func TestMemoryStoreLowStock(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()
	seedProducts(t, s)

	low, err := s.LowStockProducts(ctx, 5)
	if err != nil {
		t.Fatalf("LowStockProducts: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Test Laptop" {
		t.Errorf("low stock = %+v, want only Test Laptop", low)
	}
}

func TestMemoryStoreCustomers(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()

	c, err := s.CreateCustomer(ctx, model.CreateCustomerRequest{
		Email: "Jane@Example.com", FirstName: "Jane", LastName: "Doe",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if c.ID != "cust_000001" || c.Email != "jane@example.com" {
		t.Errorf("customer = %+v", c)
	}
	if c.FullName() != "Jane Doe" {
		t.Errorf("FullName = %q", c.FullName())
	}

	if _, err := s.CreateCustomer(ctx, model.CreateCustomerRequest{
		Email: "jane@example.com", FirstName: "Other", LastName: "Jane",
	}); err == nil {
		t.Error("duplicate email accepted")
	}

	got, err := s.GetCustomerByEmail(ctx, "JANE@example.COM")
	if err != nil || got == nil || got.ID != c.ID {
		t.Errorf("GetCustomerByEmail = (%+v, %v)", got, err)
	}
	got, err = s.GetCustomer(ctx, "cust_999999")
	if err != nil || got != nil {
		t.Errorf("missing customer = (%+v, %v), want (nil, nil)", got, err)
	}
}

func TestMemoryStoreOrders(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()
	mic, laptop := seedProducts(t, s)

	c, err := s.CreateCustomer(ctx, model.CreateCustomerRequest{
		Email: "jane@example.com", FirstName: "Jane", LastName: "Doe",
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	order, err := s.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: c.ID,
		Items: []model.OrderItemRequest{
			{ProductID: mic.ID, Quantity: 2},
			{ProductID: laptop.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != model.OrderStatusPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	want := 2*129.99 + 999.99
	if order.TotalAmount != roundCents(want) {
		t.Errorf("total = %v, want %v", order.TotalAmount, roundCents(want))
	}

	// Stock was decremented.
	p, _ := s.GetProduct(ctx, mic.ID)
	if p.StockQuantity != 8 {
		t.Errorf("mic stock = %d, want 8", p.StockQuantity)
	}

	// Over-ordering fails atomically: nothing is decremented.
	_, err = s.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: c.ID,
		Items: []model.OrderItemRequest{
			{ProductID: mic.ID, Quantity: 1},
			{ProductID: laptop.ID, Quantity: 100},
		},
	})
	if err == nil {
		t.Fatal("over-order accepted")
	}
	p, _ = s.GetProduct(ctx, mic.ID)
	if p.StockQuantity != 8 {
		t.Errorf("mic stock after failed order = %d, want 8", p.StockQuantity)
	}

	// Unknown customer rejected.
	if _, err := s.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: "cust_999999",
		Items:      []model.OrderItemRequest{{ProductID: mic.ID, Quantity: 1}},
	}); err == nil {
		t.Error("order for unknown customer accepted")
	}

	// Status transitions.
	updated, err := s.UpdateOrderStatus(ctx, order.ID, model.OrderStatusShipped)
	if err != nil || updated.Status != model.OrderStatusShipped {
		t.Errorf("UpdateOrderStatus = (%+v, %v)", updated, err)
	}
	if _, err := s.UpdateOrderStatus(ctx, order.ID, model.OrderStatus("lost")); err == nil {
		t.Error("invalid status accepted")
	}
}

func TestMemoryStoreAnalytics(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()
	mic, laptop := seedProducts(t, s)

	best, err := s.BestCustomer(ctx)
	if err != nil || best != nil {
		t.Errorf("BestCustomer on empty store = (%+v, %v), want (nil, nil)", best, err)
	}

	alice, _ := s.CreateCustomer(ctx, model.CreateCustomerRequest{Email: "alice@example.com", FirstName: "Alice", LastName: "A"})
	bob, _ := s.CreateCustomer(ctx, model.CreateCustomerRequest{Email: "bob@example.com", FirstName: "Bob", LastName: "B"})

	// Alice buys a laptop, Bob two microphones. Alice spends more.
	if _, err := s.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: alice.ID,
		Items:      []model.OrderItemRequest{{ProductID: laptop.ID, Quantity: 1}},
	}); err != nil {
		t.Fatalf("alice order: %v", err)
	}
	if _, err := s.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: bob.ID,
		Items:      []model.OrderItemRequest{{ProductID: mic.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("bob order: %v", err)
	}

	best, err = s.BestCustomer(ctx)
	if err != nil || best == nil || best.Email != "alice@example.com" {
		t.Errorf("BestCustomer = (%+v, %v), want alice", best, err)
	}

	sales, err := s.MostSoldProducts(ctx, 5)
	if err != nil || len(sales) != 2 {
		t.Fatalf("MostSoldProducts = (%d, %v)", len(sales), err)
	}
	if sales[0].ID != mic.ID || sales[0].UnitsSold != 2 {
		t.Errorf("top seller = %+v, want microphone x2", sales[0])
	}

	expensive, err := s.MostExpensiveProducts(ctx, 1)
	if err != nil || len(expensive) != 1 || expensive[0].ID != laptop.ID {
		t.Errorf("MostExpensiveProducts = (%+v, %v), want laptop", expensive, err)
	}

	// Cancelled orders drop out of the aggregates.
	orders, _ := s.ListOrders(ctx)
	for _, o := range orders {
		if o.CustomerID == alice.ID {
			if _, err := s.UpdateOrderStatus(ctx, o.ID, model.OrderStatusCancelled); err != nil {
				t.Fatalf("cancel: %v", err)
			}
		}
	}
	best, err = s.BestCustomer(ctx)
	if err != nil || best == nil || best.Email != "bob@example.com" {
		t.Errorf("BestCustomer after cancel = (%+v, %v), want bob", best, err)
	}
}

func TestSeedDemo(t *testing.T) {
	s := NewMemoryStore("USD")
	ctx := context.Background()

	if err := SeedDemo(ctx, s, 10); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}

	c, err := s.GetCustomerByEmail(ctx, DemoCustomerEmail)
	if err != nil || c == nil {
		t.Fatalf("demo customer missing: (%+v, %v)", c, err)
	}
	p, err := s.GetProductBySKU(ctx, "MIC-EGILE-001")
	if err != nil || p == nil || p.Name != DemoMicrophone {
		t.Fatalf("demo microphone missing: (%+v, %v)", p, err)
	}

	orders, err := s.ListOrders(ctx)
	if err != nil || len(orders) != 1 {
		t.Fatalf("orders = (%d, %v), want 1 sample order", len(orders), err)
	}

	products, _ := s.ListProducts(ctx)
	if len(products) < len(demoProducts) {
		t.Errorf("products = %d, want at least %d", len(products), len(demoProducts))
	}

	// Seeding twice must fail on the duplicate demo customer.
	if err := SeedDemo(ctx, s, 0); err == nil {
		t.Error("second SeedDemo succeeded")
	}
}

func f64(v float64) *float64 { return &v }
