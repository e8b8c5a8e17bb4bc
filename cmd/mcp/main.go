package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"egile/internal/catalog"
	"egile/internal/config"
	"egile/internal/model"
	"egile/internal/repository"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var (
	Version = "dev"
)

// toolHandler is the mcp-go handler signature.
type toolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

func main() {
	// MCP talks JSON-RPC over stdout; all logging goes to stderr
	log.SetOutput(os.Stderr)
	log.Printf("Egile Store MCP server %s starting...", Version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var store catalog.Store
	switch cfg.Catalog.Backend {
	case "postgres":
		repo, err := repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
			cfg.Catalog.DefaultCurrency,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}
		store = repo
		log.Println("✅ Connected to PostgreSQL database")
	default:
		store = catalog.NewMemoryStore(cfg.Catalog.DefaultCurrency)
		log.Println("✅ Using in-memory catalog")
	}

	if cfg.Catalog.SeedDemoData {
		if err := catalog.SeedDemo(ctx, store, cfg.Catalog.SeedFakeProducts); err != nil {
			log.Printf("⚠️ Failed to seed demo data: %v", err)
		}
	}

	s := server.NewMCPServer(
		"egile-store",
		Version,
	)
	registerTools(s, store, cfg.Catalog.LowStockThreshold)

	log.Println("🚀 Egile Store MCP server ready, waiting for client...")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("MCP server failed: %v", err)
	}
}

func registerTools(s *server.MCPServer, store catalog.Store, lowStockThreshold int) {
	s.AddTool(mcp.NewTool("create_product",
		mcp.WithDescription("Create a new product in the catalog"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Product name")),
		mcp.WithString("description", mcp.Required(), mcp.Description("Product description")),
		mcp.WithNumber("price", mcp.Required(), mcp.Description("Unit price")),
		mcp.WithString("sku", mcp.Required(), mcp.Description("Stock keeping unit, unique")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Product category")),
		mcp.WithNumber("stock_quantity", mcp.Description("Initial stock level, default 0")),
	), createProductHandler(store))

	s.AddTool(mcp.NewTool("get_product",
		mcp.WithDescription("Get one product by id or SKU"),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Product id (prod_...) or SKU")),
	), getProductHandler(store))

	s.AddTool(mcp.NewTool("get_all_products",
		mcp.WithDescription("List every product in the catalog"),
	), listProductsHandler(store))

	s.AddTool(mcp.NewTool("search_products",
		mcp.WithDescription("Search products by text, category and price range"),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
		mcp.WithString("category", mcp.Description("Restrict to a category")),
		mcp.WithNumber("price_min", mcp.Description("Minimum price")),
		mcp.WithNumber("price_max", mcp.Description("Maximum price")),
	), searchProductsHandler(store))

	s.AddTool(mcp.NewTool("get_low_stock_products",
		mcp.WithDescription("List products at or below a stock threshold"),
		mcp.WithNumber("threshold", mcp.Description("Stock threshold, default from configuration")),
	), lowStockHandler(store, lowStockThreshold))

	s.AddTool(mcp.NewTool("update_stock",
		mcp.WithDescription("Set, add to or subtract from a product's stock level"),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Product id (prod_...) or SKU")),
		mcp.WithNumber("quantity", mcp.Required(), mcp.Description("Quantity for the operation")),
		mcp.WithString("operation", mcp.Description("set, add or subtract; default set")),
	), updateStockHandler(store))

	s.AddTool(mcp.NewTool("create_customer",
		mcp.WithDescription("Create a new customer"),
		mcp.WithString("email", mcp.Required(), mcp.Description("Customer email, unique")),
		mcp.WithString("first_name", mcp.Required(), mcp.Description("First name")),
		mcp.WithString("last_name", mcp.Required(), mcp.Description("Last name")),
		mcp.WithString("phone", mcp.Description("Phone number")),
	), createCustomerHandler(store))

	s.AddTool(mcp.NewTool("get_customer",
		mcp.WithDescription("Get one customer by id or email"),
		mcp.WithString("identifier", mcp.Required(), mcp.Description("Customer id (cust_...) or email")),
	), getCustomerHandler(store))

	s.AddTool(mcp.NewTool("get_all_customers",
		mcp.WithDescription("List every customer"),
	), listCustomersHandler(store))

	s.AddTool(mcp.NewTool("create_order",
		mcp.WithDescription("Create an order; items is a JSON array of {product_id, quantity}"),
		mcp.WithString("customer_id", mcp.Required(), mcp.Description("Customer id (cust_...)")),
		mcp.WithString("items", mcp.Required(), mcp.Description(`Order lines as JSON, e.g. [{"product_id":"prod_000001","quantity":2}]`)),
	), createOrderHandler(store))

	s.AddTool(mcp.NewTool("get_order",
		mcp.WithDescription("Get one order by id"),
		mcp.WithString("order_id", mcp.Required(), mcp.Description("Order id (ord_...)")),
	), getOrderHandler(store))

	s.AddTool(mcp.NewTool("get_all_orders",
		mcp.WithDescription("List every order"),
	), listOrdersHandler(store))

	s.AddTool(mcp.NewTool("update_order_status",
		mcp.WithDescription("Move an order to a new status"),
		mcp.WithString("order_id", mcp.Required(), mcp.Description("Order id (ord_...)")),
		mcp.WithString("status", mcp.Required(), mcp.Description("pending, confirmed, shipped, delivered or cancelled")),
	), updateOrderStatusHandler(store))
}

// Argument helpers. MCP arguments arrive as map[string]any with JSON types,
// so every number is a float64.

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key].(float64)
	return v, ok
}

func errorResult(format string, a ...any) *mcp.CallToolResult {
	msg := fmt.Sprintf(format, a...)
	log.Println(msg)
	return mcp.NewToolResultText("Error: " + msg)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: %v", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func createProductHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments

		req := model.CreateProductRequest{}
		var ok bool
		if req.Name, ok = stringArg(args, "name"); !ok {
			return errorResult("name must be a non-empty string"), nil
		}
		if req.Description, ok = stringArg(args, "description"); !ok {
			return errorResult("description must be a non-empty string"), nil
		}
		price, ok := numberArg(args, "price")
		if !ok || price <= 0 {
			return errorResult("price must be a positive number"), nil
		}
		req.Price = price
		if req.SKU, ok = stringArg(args, "sku"); !ok {
			return errorResult("sku must be a non-empty string"), nil
		}
		if req.Category, ok = stringArg(args, "category"); !ok {
			return errorResult("category must be a non-empty string"), nil
		}
		if qty, ok := numberArg(args, "stock_quantity"); ok {
			req.StockQuantity = int(qty)
		}

		product, err := store.CreateProduct(ctx, req)
		if err != nil {
			return errorResult("failed to create product: %v", err), nil
		}
		log.Printf("✅ Created product %s (%s)", product.Name, product.ID)
		return jsonResult(product)
	}
}

func getProductHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := stringArg(request.Params.Arguments, "identifier")
		if !ok {
			return errorResult("identifier must be a non-empty string"), nil
		}

		product, err := store.GetProduct(ctx, id)
		if err == nil && product == nil {
			product, err = store.GetProductBySKU(ctx, id)
		}
		if err != nil {
			return errorResult("failed to get product: %v", err), nil
		}
		if product == nil {
			return errorResult("product %s not found", id), nil
		}
		return jsonResult(product)
	}
}

func listProductsHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		products, err := store.ListProducts(ctx)
		if err != nil {
			return errorResult("failed to list products: %v", err), nil
		}
		return jsonResult(products)
	}
}

func searchProductsHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments

		query, ok := stringArg(args, "query")
		if !ok {
			return errorResult("query must be a non-empty string"), nil
		}
		req := model.SearchProductsRequest{Query: query}
		if category, ok := stringArg(args, "category"); ok {
			req.Category = &category
		}
		if min, ok := numberArg(args, "price_min"); ok {
			req.PriceMin = &min
		}
		if max, ok := numberArg(args, "price_max"); ok {
			req.PriceMax = &max
		}

		products, err := store.SearchProducts(ctx, req)
		if err != nil {
			return errorResult("search failed: %v", err), nil
		}
		return jsonResult(products)
	}
}

func lowStockHandler(store catalog.Store, defaultThreshold int) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		threshold := defaultThreshold
		if v, ok := numberArg(request.Params.Arguments, "threshold"); ok {
			threshold = int(v)
		}
		products, err := store.LowStockProducts(ctx, threshold)
		if err != nil {
			return errorResult("failed to list low stock products: %v", err), nil
		}
		return jsonResult(products)
	}
}

func updateStockHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments

		id, ok := stringArg(args, "identifier")
		if !ok {
			return errorResult("identifier must be a non-empty string"), nil
		}
		qty, ok := numberArg(args, "quantity")
		if !ok {
			return errorResult("quantity must be a number"), nil
		}
		op := model.StockOpSet
		if opStr, ok := stringArg(args, "operation"); ok {
			switch model.StockOp(opStr) {
			case model.StockOpSet, model.StockOpAdd, model.StockOpSubtract:
				op = model.StockOp(opStr)
			default:
				return errorResult("operation must be set, add or subtract"), nil
			}
		}

		// Accept SKUs on this tool too
		if product, err := store.GetProduct(ctx, id); err == nil && product == nil {
			if bySKU, err := store.GetProductBySKU(ctx, id); err == nil && bySKU != nil {
				id = bySKU.ID
			}
		}

		product, err := store.UpdateStock(ctx, id, int(qty), op)
		if err != nil {
			return errorResult("failed to update stock: %v", err), nil
		}
		if product == nil {
			return errorResult("product %s not found", id), nil
		}
		log.Printf("✅ Stock for %s is now %d", product.Name, product.StockQuantity)
		return jsonResult(product)
	}
}

func createCustomerHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments

		req := model.CreateCustomerRequest{}
		var ok bool
		if req.Email, ok = stringArg(args, "email"); !ok {
			return errorResult("email must be a non-empty string"), nil
		}
		if req.FirstName, ok = stringArg(args, "first_name"); !ok {
			return errorResult("first_name must be a non-empty string"), nil
		}
		if req.LastName, ok = stringArg(args, "last_name"); !ok {
			return errorResult("last_name must be a non-empty string"), nil
		}
		if phone, ok := stringArg(args, "phone"); ok {
			req.Phone = &phone
		}

		customer, err := store.CreateCustomer(ctx, req)
		if err != nil {
			return errorResult("failed to create customer: %v", err), nil
		}
		log.Printf("✅ Created customer %s (%s)", customer.FullName(), customer.ID)
		return jsonResult(customer)
	}
}

func getCustomerHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := stringArg(request.Params.Arguments, "identifier")
		if !ok {
			return errorResult("identifier must be a non-empty string"), nil
		}

		var (
			customer *model.Customer
			err      error
		)
		if isEmail(id) {
			customer, err = store.GetCustomerByEmail(ctx, id)
		} else {
			customer, err = store.GetCustomer(ctx, id)
		}
		if err != nil {
			return errorResult("failed to get customer: %v", err), nil
		}
		if customer == nil {
			return errorResult("customer %s not found", id), nil
		}
		return jsonResult(customer)
	}
}

func listCustomersHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		customers, err := store.ListCustomers(ctx)
		if err != nil {
			return errorResult("failed to list customers: %v", err), nil
		}
		return jsonResult(customers)
	}
}

func createOrderHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments

		customerID, ok := stringArg(args, "customer_id")
		if !ok {
			return errorResult("customer_id must be a non-empty string"), nil
		}
		itemsJSON, ok := stringArg(args, "items")
		if !ok {
			return errorResult("items must be a non-empty JSON array"), nil
		}
		var items []model.OrderItemRequest
		if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
			return errorResult("items is not valid JSON: %v", err), nil
		}
		if len(items) == 0 {
			return errorResult("the order has no items"), nil
		}

		order, err := store.CreateOrder(ctx, model.CreateOrderRequest{
			CustomerID: customerID,
			Items:      items,
		})
		if err != nil {
			return errorResult("failed to create order: %v", err), nil
		}
		log.Printf("✅ Created order %s, total %.2f %s", order.ID, order.TotalAmount, order.Currency)
		return jsonResult(order)
	}
}

func getOrderHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, ok := stringArg(request.Params.Arguments, "order_id")
		if !ok {
			return errorResult("order_id must be a non-empty string"), nil
		}
		order, err := store.GetOrder(ctx, id)
		if err != nil {
			return errorResult("failed to get order: %v", err), nil
		}
		if order == nil {
			return errorResult("order %s not found", id), nil
		}
		return jsonResult(order)
	}
}

func listOrdersHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orders, err := store.ListOrders(ctx)
		if err != nil {
			return errorResult("failed to list orders: %v", err), nil
		}
		return jsonResult(orders)
	}
}

func updateOrderStatusHandler(store catalog.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments

		id, ok := stringArg(args, "order_id")
		if !ok {
			return errorResult("order_id must be a non-empty string"), nil
		}
		statusStr, ok := stringArg(args, "status")
		if !ok {
			return errorResult("status must be a non-empty string"), nil
		}
		status := model.OrderStatus(statusStr)
		if !status.IsValid() {
			return errorResult("invalid status %q", statusStr), nil
		}

		order, err := store.UpdateOrderStatus(ctx, id, status)
		if err != nil {
			return errorResult("failed to update order status: %v", err), nil
		}
		if order == nil {
			return errorResult("order %s not found", id), nil
		}
		log.Printf("✅ Order %s is now %s", order.ID, order.Status)
		return jsonResult(order)
	}
}

func isEmail(s string) bool {
	for _, r := range s {
		if r == '@' {
			return true
		}
	}
	return false
}
