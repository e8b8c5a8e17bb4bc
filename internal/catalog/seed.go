package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"egile/internal/model"
)

// Demo fixture identifiers referenced throughout the chat examples.
const (
	DemoCustomerEmail = "demo@example.com"
	DemoMicrophone    = "Microphone Egile"
	DemoLaptop        = "Test Laptop"
)

// demoProducts are the stable rows every seeded catalog contains.
var demoProducts = []model.CreateProductRequest{
	{Name: DemoMicrophone, Description: "Studio condenser microphone with USB-C output", Price: 129.99, SKU: "MIC-EGILE-001", Category: "electronics", StockQuantity: 42},
	{Name: DemoLaptop, Description: "14 inch developer laptop, 32GB RAM", Price: 999.99, SKU: "LAP-TEST-001", Category: "electronics", StockQuantity: 15},
	{Name: "Wireless Mouse", Description: "Low-latency wireless mouse", Price: 24.99, SKU: "MOU-WRLS-001", Category: "electronics", StockQuantity: 120},
	{Name: "Coffee Mug", Description: "Ceramic mug, 350ml", Price: 9.99, SKU: "MUG-CLSC-001", Category: "home", StockQuantity: 200},
}

var fakeCategories = []string{"electronics", "home", "office", "outdoor", "toys"}

// SeedDemo loads the demo customer, the stable demo products, one sample
// order and fakeProducts generated filler rows into the store. Seeding an
// already-populated store returns an error from the first duplicate row.
func SeedDemo(ctx context.Context, store Store, fakeProducts int) error {
	customer, err := store.CreateCustomer(ctx, model.CreateCustomerRequest{
		Email:     DemoCustomerEmail,
		FirstName: "Demo",
		LastName:  "User",
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo customer: %w", err)
	}

	byName := make(map[string]string, len(demoProducts))
	for _, req := range demoProducts {
		p, err := store.CreateProduct(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to seed product %s: %w", req.Name, err)
		}
		byName[p.Name] = p.ID
	}

	// One sample order so the analytics queries have something to report.
	_, err = store.CreateOrder(ctx, model.CreateOrderRequest{
		CustomerID: customer.ID,
		Items: []model.OrderItemRequest{
			{ProductID: byName[DemoMicrophone], Quantity: 2},
			{ProductID: byName[DemoLaptop], Quantity: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo order: %w", err)
	}

	gofakeit.Seed(time.Now().UnixNano())
	for i := 0; i < fakeProducts; i++ {
		category := gofakeit.RandomString(fakeCategories)
		req := model.CreateProductRequest{
			Name:          gofakeit.ProductName(),
			Description:   gofakeit.ProductDescription(),
			Price:         gofakeit.Price(5, 1500),
			SKU:           fmt.Sprintf("%s-%s", strings.ToUpper(category[:3]), gofakeit.DigitN(6)),
			Category:      category,
			StockQuantity: gofakeit.Number(0, 150),
		}
		if _, err := store.CreateProduct(ctx, req); err != nil {
			// Generated SKUs can collide; skip and keep seeding.
			log.Printf("⚠️ Skipping generated product %q: %v", req.Name, err)
		}
	}

	return nil
}
