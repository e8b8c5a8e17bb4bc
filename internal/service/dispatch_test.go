package service

import (
	"context"
	"strings"
	"testing"

	"egile/internal/catalog"
	"egile/internal/model"
)

// seededDispatcher returns a dispatcher over a freshly seeded in-memory
// catalog. Seeded ids are deterministic: products prod_000001..prod_000004
// in seed order, the demo customer is cust_000001 and the sample order is
// order_000001.
func seededDispatcher(t *testing.T) (*Dispatcher, catalog.Store) {
	t.Helper()
	store := catalog.NewMemoryStore("USD")
	if err := catalog.SeedDemo(context.Background(), store, 0); err != nil {
		t.Fatalf("SeedDemo: %v", err)
	}
	return NewDispatcher(store, "", 10), store
}

func intentFor(action model.Action, p model.Params) *model.IntentResult {
	return &model.IntentResult{
		Action:         action,
		Intent:         string(action),
		Confidence:     0.9,
		Parameters:     p,
		RequiresAction: true,
	}
}

func strp(s string) *string { return &s }
func intp(v int) *int       { return &v }

func TestDispatchListAndSearch(t *testing.T) {
	d, _ := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionListProducts, model.Params{}))
	if !res.Success {
		t.Fatalf("list_products failed: %s", res.Error)
	}
	if products := res.Data.([]model.Product); len(products) != 4 {
		t.Errorf("listed %d products, want 4", len(products))
	}

	res = d.Dispatch(ctx, intentFor(model.ActionSearchProducts, model.Params{Query: strp("laptop")}))
	if !res.Success {
		t.Fatalf("search failed: %s", res.Error)
	}
	products := res.Data.([]model.Product)
	if len(products) != 1 || products[0].Name != catalog.DemoLaptop {
		t.Errorf("search = %+v, want just the laptop", products)
	}
}

func TestDispatchGetProduct(t *testing.T) {
	d, _ := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionGetProduct, model.Params{ProductID: strp("prod_000001")}))
	if !res.Success || res.Data.(*model.Product).Name != catalog.DemoMicrophone {
		t.Errorf("get by id = %+v", res)
	}

	res = d.Dispatch(ctx, intentFor(model.ActionGetProduct, model.Params{SKU: strp("LAP-TEST-001")}))
	if !res.Success || res.Data.(*model.Product).Name != catalog.DemoLaptop {
		t.Errorf("get by sku = %+v", res)
	}

	res = d.Dispatch(ctx, intentFor(model.ActionGetProduct, model.Params{ProductID: strp("prod_999999")}))
	if res.Success {
		t.Error("unknown product id succeeded")
	}

	res = d.Dispatch(ctx, intentFor(model.ActionGetProduct, model.Params{}))
	if res.Success || !strings.Contains(res.Error, "no product id or sku") {
		t.Errorf("missing identifier: %+v", res)
	}
}

func TestDispatchCreateProduct(t *testing.T) {
	d, store := seededDispatcher(t)
	ctx := context.Background()

	price := 89.99
	res := d.Dispatch(ctx, intentFor(model.ActionCreateProduct, model.Params{
		Name:          strp("Gaming Headset"),
		Price:         &price,
		SKU:           strp("HEAD-GAME-001"),
		Category:      strp("electronics"),
		StockQuantity: intp(25),
	}))
	if !res.Success {
		t.Fatalf("create_product failed: %s", res.Error)
	}
	created, err := store.GetProductBySKU(ctx, "HEAD-GAME-001")
	if err != nil || created == nil {
		t.Fatalf("created product not in store: %v", err)
	}
	if created.Name != "Gaming Headset" || created.StockQuantity != 25 {
		t.Errorf("stored product = %+v", created)
	}
}

func TestDispatchCreateCustomer(t *testing.T) {
	d, store := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionCreateCustomer, model.Params{
		Email:     strp("jane@example.com"),
		FirstName: strp("Jane"),
		LastName:  strp("Doe"),
		Phone:     strp("+65 9123 4567"),
	}))
	if !res.Success {
		t.Fatalf("create_customer failed: %s", res.Error)
	}
	c, err := store.GetCustomerByEmail(ctx, "jane@example.com")
	if err != nil || c == nil {
		t.Fatalf("created customer not in store: %v", err)
	}
	if c.FullName() != "Jane Doe" || c.Phone == nil {
		t.Errorf("stored customer = %+v", c)
	}

	// Duplicate email surfaces as a dispatch failure, not a panic.
	res = d.Dispatch(ctx, intentFor(model.ActionCreateCustomer, model.Params{
		Email:     strp("jane@example.com"),
		FirstName: strp("Jane"),
		LastName:  strp("Doe"),
	}))
	if res.Success {
		t.Error("duplicate email succeeded")
	}
}

func TestDispatchCreateOrder(t *testing.T) {
	d, store := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionCreateOrder, model.Params{
		Customer: strp("demo"),
		Items: []model.LineItem{
			{ProductMention: "microphone egile", ProductID: "prod_000001", Quantity: 2},
			{ProductMention: "test laptop", ProductID: "prod_000002", Quantity: 1},
		},
	}))
	if !res.Success {
		t.Fatalf("create_order failed: %s", res.Error)
	}
	order := res.Data.(*model.Order)
	if len(order.Items) != 2 {
		t.Errorf("order has %d items, want 2", len(order.Items))
	}

	// Stock went down: the seed order already took 2 microphones off the
	// initial 42, this order takes 2 more.
	mic, _ := store.GetProduct(ctx, "prod_000001")
	if mic.StockQuantity != 38 {
		t.Errorf("microphone stock = %d, want 38", mic.StockQuantity)
	}
}

func TestDispatchCreateOrderUnresolvedItem(t *testing.T) {
	d, store := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionCreateOrder, model.Params{
		Customer: strp("demo"),
		Items: []model.LineItem{
			{ProductMention: "microphone egile", ProductID: "prod_000001", Quantity: 1},
			{ProductMention: "flying toaster 9000", Quantity: 1},
		},
	}))
	if res.Success {
		t.Fatal("order with an unresolved item succeeded")
	}
	if !strings.Contains(res.Error, `"flying toaster 9000"`) {
		t.Errorf("error does not name the unmatched product: %s", res.Error)
	}

	// The rejection happens before any stock moves.
	mic, _ := store.GetProduct(ctx, "prod_000001")
	if mic.StockQuantity != 40 {
		t.Errorf("microphone stock = %d, want 40", mic.StockQuantity)
	}
}

func TestDispatchCreateOrderBareProduct(t *testing.T) {
	d, _ := seededDispatcher(t)

	// No item list, just a resolved product and a quantity.
	res := d.Dispatch(context.Background(), intentFor(model.ActionCreateOrder, model.Params{
		ProductID: strp("prod_000002"),
		Quantity:  intp(3),
	}))
	if !res.Success {
		t.Fatalf("bare product order failed: %s", res.Error)
	}
	order := res.Data.(*model.Order)
	if len(order.Items) != 1 || order.Items[0].Quantity != 3 {
		t.Errorf("order items = %+v", order.Items)
	}
	// No customer reference falls back to the seeded demo account.
	if order.CustomerID != "cust_000001" {
		t.Errorf("order customer = %s, want cust_000001", order.CustomerID)
	}
}

func TestDispatchCreateOrderNoItems(t *testing.T) {
	d, _ := seededDispatcher(t)

	res := d.Dispatch(context.Background(), intentFor(model.ActionCreateOrder, model.Params{
		Customer: strp("demo"),
	}))
	if res.Success || !strings.Contains(res.Error, "no items") {
		t.Errorf("empty order: %+v", res)
	}
}

func TestResolveCustomerForms(t *testing.T) {
	d, store := seededDispatcher(t)
	ctx := context.Background()

	if _, err := store.CreateCustomer(ctx, model.CreateCustomerRequest{
		Email: "alice@example.com", FirstName: "Alice", LastName: "Nguyen",
	}); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	tests := []struct {
		name      string
		params    model.Params
		wantEmail string
		wantMiss  bool
	}{
		{"explicit id", model.Params{CustomerID: strp("cust_000001")}, "demo@example.com", false},
		{"explicit email", model.Params{Email: strp("alice@example.com")}, "alice@example.com", false},
		{"reference with @", model.Params{Customer: strp("alice@example.com")}, "alice@example.com", false},
		{"reference with id prefix", model.Params{Customer: strp("cust_000002")}, "alice@example.com", false},
		{"full name", model.Params{Customer: strp("Alice Nguyen")}, "alice@example.com", false},
		{"first name, cased", model.Params{Customer: strp("ALICE")}, "alice@example.com", false},
		{"bare demo", model.Params{Customer: strp("demo")}, "demo@example.com", false},
		{"nothing at all", model.Params{}, "demo@example.com", false},
		{"unknown name", model.Params{Customer: strp("Bob Unknown")}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := d.resolveCustomer(ctx, tt.params)
			if err != nil {
				t.Fatalf("resolveCustomer: %v", err)
			}
			if tt.wantMiss {
				if c != nil {
					t.Errorf("resolved %+v, want miss", c)
				}
				return
			}
			if c == nil || c.Email != tt.wantEmail {
				t.Errorf("resolved %+v, want email %s", c, tt.wantEmail)
			}
		})
	}
}

func TestDispatchUpdateStock(t *testing.T) {
	d, store := seededDispatcher(t)
	ctx := context.Background()

	// Positive delta adds. Seed left the laptop at 14.
	res := d.Dispatch(ctx, intentFor(model.ActionUpdateStock, model.Params{
		ProductID: strp("prod_000002"), Delta: intp(6),
	}))
	if !res.Success {
		t.Fatalf("add failed: %s", res.Error)
	}
	if p, _ := store.GetProduct(ctx, "prod_000002"); p.StockQuantity != 20 {
		t.Errorf("after add: %d, want 20", p.StockQuantity)
	}

	// Negative delta subtracts.
	delta := -5
	res = d.Dispatch(ctx, intentFor(model.ActionUpdateStock, model.Params{
		ProductID: strp("prod_000002"), Delta: &delta,
	}))
	if !res.Success {
		t.Fatalf("subtract failed: %s", res.Error)
	}
	if p, _ := store.GetProduct(ctx, "prod_000002"); p.StockQuantity != 15 {
		t.Errorf("after subtract: %d, want 15", p.StockQuantity)
	}

	// An absolute level sets.
	res = d.Dispatch(ctx, intentFor(model.ActionUpdateStock, model.Params{
		ProductID: strp("prod_000002"), StockLevel: intp(99),
	}))
	if !res.Success {
		t.Fatalf("set failed: %s", res.Error)
	}
	if p, _ := store.GetProduct(ctx, "prod_000002"); p.StockQuantity != 99 {
		t.Errorf("after set: %d, want 99", p.StockQuantity)
	}

	// An unmatched mention names the product in the error.
	res = d.Dispatch(ctx, intentFor(model.ActionUpdateStock, model.Params{
		ProductMention: strp("flying toaster 9000"), Delta: intp(1),
	}))
	if res.Success || !strings.Contains(res.Error, `"flying toaster 9000"`) {
		t.Errorf("unresolved mention: %+v", res)
	}

	// A product with no change to apply is rejected.
	res = d.Dispatch(ctx, intentFor(model.ActionUpdateStock, model.Params{
		ProductID: strp("prod_000002"),
	}))
	if res.Success || !strings.Contains(res.Error, "no stock change") {
		t.Errorf("missing change: %+v", res)
	}
}

func TestDispatchAnalytics(t *testing.T) {
	d, _ := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionGetBestCustomer, model.Params{}))
	if !res.Success {
		t.Fatalf("best_customer failed: %s", res.Error)
	}
	best := res.Data.(*model.CustomerSpend)
	if best.Email != catalog.DemoCustomerEmail {
		t.Errorf("best customer = %s", best.Email)
	}

	res = d.Dispatch(ctx, intentFor(model.ActionGetMostSoldProducts, model.Params{Limit: intp(1)}))
	if !res.Success {
		t.Fatalf("most_sold failed: %s", res.Error)
	}
	sales := res.Data.([]model.ProductSales)
	if len(sales) != 1 || sales[0].Name != catalog.DemoMicrophone || sales[0].UnitsSold != 2 {
		t.Errorf("most sold = %+v", sales)
	}

	res = d.Dispatch(ctx, intentFor(model.ActionGetExpensiveProducts, model.Params{Limit: intp(2)}))
	if !res.Success {
		t.Fatalf("expensive failed: %s", res.Error)
	}
	products := res.Data.([]model.Product)
	if len(products) != 2 || products[0].Name != catalog.DemoLaptop {
		t.Errorf("expensive = %+v", products)
	}
}

func TestDispatchLowStock(t *testing.T) {
	d, _ := seededDispatcher(t)

	// The seed order left the laptop at 14, inside the explicit threshold.
	res := d.Dispatch(context.Background(), intentFor(model.ActionGetLowStockProducts, model.Params{
		Threshold: intp(14),
	}))
	if !res.Success {
		t.Fatalf("low_stock failed: %s", res.Error)
	}
	products := res.Data.([]model.Product)
	if len(products) != 1 || products[0].Name != catalog.DemoLaptop {
		t.Errorf("low stock = %+v", products)
	}
}

func TestDispatchOrders(t *testing.T) {
	d, _ := seededDispatcher(t)
	ctx := context.Background()

	res := d.Dispatch(ctx, intentFor(model.ActionGetOrder, model.Params{OrderID: strp("order_000001")}))
	if !res.Success {
		t.Fatalf("get_order failed: %s", res.Error)
	}
	if order := res.Data.(*model.Order); order.Status != model.OrderStatusPending {
		t.Errorf("order status = %s", order.Status)
	}

	res = d.Dispatch(ctx, intentFor(model.ActionGetOrder, model.Params{OrderID: strp("order_999999")}))
	if res.Success {
		t.Error("unknown order succeeded")
	}

	res = d.Dispatch(ctx, intentFor(model.ActionListOrders, model.Params{}))
	if !res.Success {
		t.Fatalf("list_orders failed: %s", res.Error)
	}
	if orders := res.Data.([]model.Order); len(orders) != 1 {
		t.Errorf("listed %d orders, want 1", len(orders))
	}
}

func TestDispatchInformationalActionsSkipBackend(t *testing.T) {
	// A nil store proves informational actions never reach the catalog.
	d := NewDispatcher(nil, "", 10)

	for _, action := range []model.Action{
		model.ActionHelpCreateCustomer,
		model.ActionHelpCreateOrder,
		model.ActionHelpCreateProduct,
		model.ActionHelpChooseCustomerContact,
		model.ActionUnknown,
	} {
		res := d.Dispatch(context.Background(), intentFor(action, model.Params{}))
		if !res.Success || res.Data != nil {
			t.Errorf("%s: %+v, want empty success", action, res)
		}
	}
}
