package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"egile/internal/catalog"
	"egile/internal/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

//go:embed schema.sql
var schemaSQL string

// productColumns deliberately leaves the embedding column out: it is NULL
// until the embedding pipeline fills it and is only read by vector search.
const productColumns = `id, name, description, price, currency, sku, category,
	stock_quantity, is_active, created_at, updated_at`

const customerColumns = `id, email, first_name, last_name, phone, address,
	created_at, updated_at`

const orderColumns = `id, customer_id, total_amount, currency, status,
	created_at, updated_at`

// PostgresRepository is the PostgreSQL-backed catalog Store
type PostgresRepository struct {
	db       *sqlx.DB
	currency string
}

var _ catalog.Store = (*PostgresRepository)(nil)

// NewPostgresRepository connects to PostgreSQL and tunes the pool
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, defaultCurrency string) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}

	return &PostgresRepository{db: db, currency: defaultCurrency}, nil
}

// EnsureSchema applies the embedded schema. Every statement is idempotent,
// so this runs on each boot.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// CreateProduct inserts a product and returns the stored row
func (r *PostgresRepository) CreateProduct(ctx context.Context, req model.CreateProductRequest) (*model.Product, error) {
	currency := req.Currency
	if currency == "" {
		currency = r.currency
	}
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))

	query := fmt.Sprintf(`
		INSERT INTO products (name, description, price, currency, sku, category, stock_quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, productColumns)

	var p model.Product
	err := r.db.GetContext(ctx, &p, query,
		strings.TrimSpace(req.Name), req.Description, req.Price, currency, sku, req.Category, req.StockQuantity)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("product with sku %s already exists", sku)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &p, nil
}

// GetProduct retrieves a single product by id
func (r *PostgresRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// GetProductBySKU retrieves a single product by SKU (case-insensitive)
func (r *PostgresRepository) GetProductBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	query := fmt.Sprintf(`SELECT %s FROM products WHERE upper(sku) = upper($1)`, productColumns)
	err := r.db.GetContext(ctx, &p, query, strings.TrimSpace(sku))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}
	return &p, nil
}

// ListProducts returns all products ordered by id
func (r *PostgresRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	query := fmt.Sprintf(`SELECT %s FROM products ORDER BY id`, productColumns)
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SearchProducts performs a filtered full-text search over the catalog
func (r *PostgresRepository) SearchProducts(ctx context.Context, req model.SearchProductsRequest) ([]model.Product, error) {
	// Build WHERE clause
	whereClauses := []string{"is_active = true"}
	args := []interface{}{}
	argIndex := 1

	query := strings.TrimSpace(req.Query)
	if query != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(search_vector @@ plainto_tsquery('english', $%d) OR name ILIKE $%d OR sku ILIKE $%d)",
			argIndex, argIndex+1, argIndex+1))
		args = append(args, query, "%"+query+"%")
		argIndex += 2
	}
	if req.Category != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category ILIKE $%d", argIndex))
		args = append(args, *req.Category)
		argIndex++
	}
	if req.PriceMin != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *req.PriceMin)
		argIndex++
	}
	if req.PriceMax != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *req.PriceMax)
		argIndex++
	}
	if req.InStockOnly {
		whereClauses = append(whereClauses, "stock_quantity > 0")
	}

	whereClause := strings.Join(whereClauses, " AND ")

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE %s
		ORDER BY ts_rank(search_vector, plainto_tsquery('english', $%d)) DESC, id ASC
	`, productColumns, whereClause, argIndex)
	args = append(args, query)

	var products []model.Product
	if err := r.db.SelectContext(ctx, &products, selectQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// UpdateStock applies a set, add or subtract operation to a product's stock
func (r *PostgresRepository) UpdateStock(ctx context.Context, productID string, quantity int, op model.StockOp) (*model.Product, error) {
	var query string
	switch op {
	case model.StockOpSet:
		if quantity < 0 {
			return nil, fmt.Errorf("stock level cannot be negative")
		}
		query = fmt.Sprintf(`
			UPDATE products SET stock_quantity = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING %s
		`, productColumns)
	case model.StockOpAdd:
		query = fmt.Sprintf(`
			UPDATE products SET stock_quantity = stock_quantity + $1, updated_at = NOW()
			WHERE id = $2
			RETURNING %s
		`, productColumns)
	case model.StockOpSubtract:
		query = fmt.Sprintf(`
			UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
			WHERE id = $2 AND stock_quantity >= $1
			RETURNING %s
		`, productColumns)
	default:
		return nil, fmt.Errorf("unsupported stock operation: %s", op)
	}

	var p model.Product
	err := r.db.GetContext(ctx, &p, query, quantity, productID)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	// No row matched: either the product is missing or a subtract would go
	// negative.
	existing, lookupErr := r.GetProduct(ctx, productID)
	if lookupErr != nil {
		return nil, lookupErr
	}
	if existing == nil {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	return nil, fmt.Errorf("insufficient stock for %s: have %d, subtract %d",
		existing.Name, existing.StockQuantity, quantity)
}

// LowStockProducts returns active products at or below the threshold
func (r *PostgresRepository) LowStockProducts(ctx context.Context, threshold int) ([]model.Product, error) {
	var products []model.Product
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = true AND stock_quantity <= $1
		ORDER BY stock_quantity ASC, id ASC
	`, productColumns)
	if err := r.db.SelectContext(ctx, &products, query, threshold); err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// CreateCustomer inserts a customer account
func (r *PostgresRepository) CreateCustomer(ctx context.Context, req model.CreateCustomerRequest) (*model.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	query := fmt.Sprintf(`
		INSERT INTO customers (email, first_name, last_name, phone, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s
	`, customerColumns)

	var c model.Customer
	err := r.db.GetContext(ctx, &c, query,
		email, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.Phone, req.Address)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("customer with email %s already exists", email)
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

// GetCustomer retrieves a single customer by id
func (r *PostgresRepository) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE id = $1`, customerColumns)
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// GetCustomerByEmail retrieves a single customer by email (case-insensitive)
func (r *PostgresRepository) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var c model.Customer
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE email = lower($1)`, customerColumns)
	err := r.db.GetContext(ctx, &c, query, strings.TrimSpace(email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer by email: %w", err)
	}
	return &c, nil
}

// ListCustomers returns all customers ordered by id
func (r *PostgresRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	query := fmt.Sprintf(`SELECT %s FROM customers ORDER BY id`, customerColumns)
	if err := r.db.SelectContext(ctx, &customers, query); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// CreateOrder validates the request, prices the items from the current
// catalog, decrements stock and records the order as pending. The whole
// operation runs in one transaction with the product rows locked.
func (r *PostgresRepository) CreateOrder(ctx context.Context, req model.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var customerExists bool
	if err := tx.GetContext(ctx, &customerExists,
		`SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, req.CustomerID); err != nil {
		return nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if !customerExists {
		return nil, fmt.Errorf("customer %s not found", req.CustomerID)
	}

	currency := req.Currency
	if currency == "" {
		currency = r.currency
	}

	// Lock and validate every product before touching stock.
	type lockedProduct struct {
		ID            string  `db:"id"`
		Name          string  `db:"name"`
		Price         float64 `db:"price"`
		StockQuantity int     `db:"stock_quantity"`
	}
	locked := make(map[string]lockedProduct, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("quantity for %s must be at least 1", item.ProductID)
		}
		var p lockedProduct
		err := tx.GetContext(ctx, &p, `
			SELECT id, name, price, stock_quantity
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, fmt.Errorf("product %s not found", item.ProductID)
			}
			return nil, fmt.Errorf("failed to lock product: %w", err)
		}
		if p.StockQuantity < item.Quantity {
			return nil, fmt.Errorf("insufficient stock for %s: have %d, need %d",
				p.Name, p.StockQuantity, item.Quantity)
		}
		locked[item.ProductID] = p
	}

	var o model.Order
	orderInsert := fmt.Sprintf(`
		INSERT INTO orders (customer_id, total_amount, currency, status)
		VALUES ($1, 0, $2, $3)
		RETURNING %s
	`, orderColumns)
	if err := tx.GetContext(ctx, &o, orderInsert, req.CustomerID, currency, model.OrderStatusPending); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	itemStmt, err := tx.PreparexContext(ctx, `
		INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare item insert: %w", err)
	}
	defer itemStmt.Close()

	var total float64
	for _, item := range req.Items {
		p := locked[item.ProductID]
		line := model.OrderItem{
			ProductID:  p.ID,
			Quantity:   item.Quantity,
			UnitPrice:  p.Price,
			TotalPrice: roundCents(p.Price * float64(item.Quantity)),
		}
		if _, err := itemStmt.ExecContext(ctx, o.ID, line.ProductID, line.Quantity, line.UnitPrice, line.TotalPrice); err != nil {
			return nil, fmt.Errorf("failed to insert order item: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW() WHERE id = $2`,
			item.Quantity, item.ProductID); err != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}
		o.Items = append(o.Items, line)
		total += line.TotalPrice
	}

	o.TotalAmount = roundCents(total)
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET total_amount = $1, updated_at = NOW() WHERE id = $2`,
		o.TotalAmount, o.ID); err != nil {
		return nil, fmt.Errorf("failed to set order total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return &o, nil
}

// GetOrder retrieves an order with its items
func (r *PostgresRepository) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	err := r.db.GetContext(ctx, &o, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.db.SelectContext(ctx, &o.Items, `
		SELECT product_id, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	return &o, nil
}

// ListOrders returns all orders with their items, newest first
func (r *PostgresRepository) ListOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	query := fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC, id DESC`, orderColumns)
	if err := r.db.SelectContext(ctx, &orders, query); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	type orderItemRow struct {
		OrderID string `db:"order_id"`
		model.OrderItem
	}
	var rows []orderItemRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT order_id, product_id, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	byOrder := make(map[string][]model.OrderItem, len(orders))
	for _, row := range rows {
		byOrder[row.OrderID] = append(byOrder[row.OrderID], row.OrderItem)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

// UpdateOrderStatus moves an order to a new lifecycle state
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}

	var o model.Order
	query := fmt.Sprintf(`
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s
	`, orderColumns)
	err := r.db.GetContext(ctx, &o, query, status, orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if err := r.db.SelectContext(ctx, &o.Items, `
		SELECT product_id, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	return &o, nil
}

// BestCustomer returns the customer with the highest total spend across
// non-cancelled orders, or (nil, nil) when there are no orders
func (r *PostgresRepository) BestCustomer(ctx context.Context) (*model.CustomerSpend, error) {
	var best model.CustomerSpend
	query := `
		SELECT
			c.id, c.email, c.first_name, c.last_name, c.phone, c.address,
			c.created_at, c.updated_at,
			COUNT(o.id) AS order_count,
			COALESCE(SUM(o.total_amount), 0) AS total_spent
		FROM customers c
		JOIN orders o ON o.customer_id = c.id
		WHERE o.status <> 'cancelled'
		GROUP BY c.id
		ORDER BY total_spent DESC, c.id ASC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &best, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get best customer: %w", err)
	}
	return &best, nil
}

// MostSoldProducts returns products ranked by units sold across
// non-cancelled orders
func (r *PostgresRepository) MostSoldProducts(ctx context.Context, limit int) ([]model.ProductSales, error) {
	if limit <= 0 {
		limit = 5
	}

	var sales []model.ProductSales
	query := fmt.Sprintf(`
		SELECT %s, s.units_sold
		FROM products p
		JOIN (
			SELECT oi.product_id, SUM(oi.quantity) AS units_sold
			FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.status <> 'cancelled'
			GROUP BY oi.product_id
		) s ON s.product_id = p.id
		ORDER BY s.units_sold DESC, p.id ASC
		LIMIT $1
	`, prefixColumns("p", productColumns))
	if err := r.db.SelectContext(ctx, &sales, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get most sold products: %w", err)
	}
	return sales, nil
}

// MostExpensiveProducts returns active products ranked by price
func (r *PostgresRepository) MostExpensiveProducts(ctx context.Context, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 5
	}

	var products []model.Product
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = true
		ORDER BY price DESC, id ASC
		LIMIT $1
	`, productColumns)
	if err := r.db.SelectContext(ctx, &products, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get most expensive products: %w", err)
	}
	return products, nil
}

// UpdateProductEmbedding updates the embedding vector for a product
func (r *PostgresRepository) UpdateProductEmbedding(ctx context.Context, productID string, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE products SET embedding = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, vec, productID)
	if err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple products
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE products SET embedding = $1, updated_at = NOW() WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		_, err := stmt.ExecContext(ctx, vec, item.ProductID)
		if err != nil {
			errors = append(errors, fmt.Sprintf("product %s: %v", item.ProductID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// VectorSearchProducts ranks products by embedding similarity to the query
// vector. Products without an embedding are skipped.
func (r *PostgresRepository) VectorSearchProducts(ctx context.Context, queryEmbedding []float32, limit int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(queryEmbedding)
	var products []model.Product
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE is_active = true AND embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, productColumns)
	if err := r.db.SelectContext(ctx, &products, query, vec, limit); err != nil {
		return nil, fmt.Errorf("failed to vector search products: %w", err)
	}
	return products, nil
}

// LogInterpretation records one classification outcome for later analysis
func (r *PostgresRepository) LogInterpretation(ctx context.Context, entry model.InterpretLog) error {
	paramsJSON, err := json.Marshal(entry.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	query := `
		INSERT INTO interpret_logs (id, message, source, action, intent, confidence, requires_action, parameters, took_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.RequestID, entry.Message, entry.Source, entry.Action, entry.Intent,
		entry.Confidence, entry.RequiresAction, paramsJSON, entry.TookMs)
	if err != nil {
		return fmt.Errorf("failed to log interpretation: %w", err)
	}
	return nil
}

// prefixColumns qualifies each column in list with the table alias.
func prefixColumns(alias, list string) string {
	cols := strings.Split(list, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
