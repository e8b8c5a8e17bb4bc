package handler

import (
	"net/http"
	"strconv"

	"egile/internal/catalog"
	"egile/internal/model"

	"github.com/gin-gonic/gin"
)

// CatalogHandler handles the REST catalog API
type CatalogHandler struct {
	store             catalog.Store
	lowStockThreshold int
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store catalog.Store, lowStockThreshold int) *CatalogHandler {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &CatalogHandler{
		store:             store,
		lowStockThreshold: lowStockThreshold,
	}
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.store.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// GetProduct handles GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.store.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product: " + err.Error()})
		return
	}
	if product == nil {
		// Fall back to SKU lookup so both identifier kinds work on one route
		product, err = h.store.GetProductBySKU(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product: " + err.Error()})
			return
		}
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	product, err := h.store.CreateProduct(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// SearchProducts handles POST /api/v1/products/search
func (h *CatalogHandler) SearchProducts(c *gin.Context) {
	var req model.SearchProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	products, err := h.store.SearchProducts(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

// UpdateStock handles PUT /api/v1/products/:id/stock
func (h *CatalogHandler) UpdateStock(c *gin.Context) {
	id := c.Param("id")

	var req model.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	op := req.Operation
	if op == "" {
		op = model.StockOpSet
	}

	product, err := h.store.UpdateStock(c.Request.Context(), id, req.Quantity, op)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock: " + err.Error()})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// LowStock handles GET /api/v1/products/low-stock
func (h *CatalogHandler) LowStock(c *gin.Context) {
	threshold := h.lowStockThreshold
	if s := c.Query("threshold"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid threshold"})
			return
		}
		threshold = v
	}

	products, err := h.store.LowStockProducts(c.Request.Context(), threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list low stock products: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products), "threshold": threshold})
}

// ListCustomers handles GET /api/v1/customers
func (h *CatalogHandler) ListCustomers(c *gin.Context) {
	customers, err := h.store.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list customers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers, "count": len(customers)})
}

// GetCustomer handles GET /api/v1/customers/:id
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id := c.Param("id")

	var (
		customer *model.Customer
		err      error
	)
	if isEmail(id) {
		customer, err = h.store.GetCustomerByEmail(c.Request.Context(), id)
	} else {
		customer, err = h.store.GetCustomer(c.Request.Context(), id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get customer: " + err.Error()})
		return
	}
	if customer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles POST /api/v1/customers
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req model.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	customer, err := h.store.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// ListOrders handles GET /api/v1/orders
func (h *CatalogHandler) ListOrders(c *gin.Context) {
	orders, err := h.store.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *CatalogHandler) GetOrder(c *gin.Context) {
	order, err := h.store.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get order: " + err.Error()})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreateOrder handles POST /api/v1/orders
func (h *CatalogHandler) CreateOrder(c *gin.Context) {
	var req model.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.store.CreateOrder(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status
func (h *CatalogHandler) UpdateOrderStatus(c *gin.Context) {
	var req model.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	order, err := h.store.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status: " + err.Error()})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// BestCustomer handles GET /api/v1/analytics/best-customer
func (h *CatalogHandler) BestCustomer(c *gin.Context) {
	best, err := h.store.BestCustomer(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute best customer: " + err.Error()})
		return
	}
	if best == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No orders yet"})
		return
	}
	c.JSON(http.StatusOK, best)
}

// MostSoldProducts handles GET /api/v1/analytics/most-sold
func (h *CatalogHandler) MostSoldProducts(c *gin.Context) {
	limit := queryLimit(c, 5)
	sales, err := h.store.MostSoldProducts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank products: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": sales, "count": len(sales)})
}

// MostExpensiveProducts handles GET /api/v1/analytics/most-expensive
func (h *CatalogHandler) MostExpensiveProducts(c *gin.Context) {
	limit := queryLimit(c, 5)
	products, err := h.store.MostExpensiveProducts(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rank products: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func queryLimit(c *gin.Context, def int) int {
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func isEmail(s string) bool {
	for _, r := range s {
		if r == '@' {
			return true
		}
	}
	return false
}
