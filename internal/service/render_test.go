package service

import (
	"fmt"
	"strings"
	"testing"

	"egile/internal/model"
)

func TestRenderHelpRepliesIgnoreResults(t *testing.T) {
	for action, want := range helpReplies {
		// Even a failed result cannot override guidance text.
		got := RenderReply(intentFor(action, model.Params{}), &model.ActionResult{Success: false, Error: "boom"})
		if got != want {
			t.Errorf("%s: reply = %q", action, got)
		}
	}
}

func TestRenderFailure(t *testing.T) {
	got := RenderReply(intentFor(model.ActionGetProduct, model.Params{}),
		&model.ActionResult{Success: false, Error: "product prod_000009 not found"})
	if !strings.Contains(got, "didn't work") || !strings.Contains(got, "prod_000009") {
		t.Errorf("reply = %q", got)
	}
}

func TestRenderUnexecutedIntent(t *testing.T) {
	intent := intentFor(model.ActionListProducts, model.Params{})
	intent.Intent = "list all products"
	if got := RenderReply(intent, nil); got != "Understood: list all products." {
		t.Errorf("reply = %q", got)
	}
}

func TestRenderProductListTruncates(t *testing.T) {
	products := make([]model.Product, 8)
	for i := range products {
		products[i] = model.Product{Name: fmt.Sprintf("Product %d", i+1), SKU: fmt.Sprintf("SKU-%03d", i+1), Price: 10, StockQuantity: 3}
	}

	got := RenderReply(intentFor(model.ActionListProducts, model.Params{}),
		&model.ActionResult{Success: true, Data: products})
	if !strings.Contains(got, "I found 8 product(s)") {
		t.Errorf("reply = %q", got)
	}
	if !strings.Contains(got, "... and 3 more.") {
		t.Errorf("reply missing truncation marker: %q", got)
	}
	if strings.Contains(got, "Product 6") {
		t.Errorf("reply lists rows past the cutoff: %q", got)
	}
}

func TestRenderEmptyCollections(t *testing.T) {
	tests := []struct {
		action model.Action
		want   string
	}{
		{model.ActionListProducts, "No products found"},
		{model.ActionListCustomers, "No customers yet"},
		{model.ActionListOrders, "No orders yet"},
		{model.ActionGetLowStockProducts, "well stocked"},
		{model.ActionGetMostSoldProducts, "No sales recorded"},
	}
	for _, tt := range tests {
		got := RenderReply(intentFor(tt.action, model.Params{}), &model.ActionResult{Success: true})
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: reply = %q, want mention of %q", tt.action, got, tt.want)
		}
	}
}

func TestRenderBestCustomer(t *testing.T) {
	spend := &model.CustomerSpend{
		Customer:   model.Customer{FirstName: "Demo", LastName: "User", Email: "demo@example.com"},
		OrderCount: 3,
		TotalSpent: 1259.97,
	}
	got := RenderReply(intentFor(model.ActionGetBestCustomer, model.Params{}),
		&model.ActionResult{Success: true, Data: spend})
	if !strings.Contains(got, "Demo User") || !strings.Contains(got, "1259.97") {
		t.Errorf("reply = %q", got)
	}

	// No orders yet: Data is nil.
	got = RenderReply(intentFor(model.ActionGetBestCustomer, model.Params{}),
		&model.ActionResult{Success: true, Message: "no orders yet"})
	if !strings.Contains(got, "no best customer") {
		t.Errorf("reply = %q", got)
	}
}
