package model

// ChatRequest represents one user message to the assistant
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse represents a full assistant turn
type ChatResponse struct {
	Reply     string        `json:"reply"`
	Intent    *IntentResult `json:"intent,omitempty"`
	Source    string        `json:"source"` // "primary" or "fallback"
	Result    *ActionResult `json:"result,omitempty"`
	RequestID string        `json:"request_id"`
	Took      int64         `json:"took_ms"` // Response time in milliseconds
}

// InterpretRequest represents a request to run only the rule engine
type InterpretRequest struct {
	Message string `json:"message" binding:"required"`
	Resolve *bool  `json:"resolve,omitempty"` // resolve product mentions, default true
}

// ActionResult is the backend outcome of one dispatched action
type ActionResult struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// WSMessage is the envelope for WebSocket chat frames in both directions.
// Inbound frames use type "chat_message"; outbound frames use
// "connection_confirmed", "typing", "agent" and "error".
type WSMessage struct {
	Type      string        `json:"type"`
	Message   string        `json:"message,omitempty"`
	Intent    *IntentResult `json:"intent,omitempty"`
	Timestamp string        `json:"timestamp,omitempty"`
}

// CreateProductRequest represents a product creation payload
type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description" binding:"required"`
	Price         float64 `json:"price" binding:"required"`
	Currency      string  `json:"currency,omitempty"`
	SKU           string  `json:"sku" binding:"required"`
	Category      string  `json:"category" binding:"required"`
	StockQuantity int     `json:"stock_quantity"`
}

// CreateCustomerRequest represents a customer creation payload
type CreateCustomerRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Phone     *string `json:"phone,omitempty"`
	Address   JSONMap `json:"address,omitempty"`
}

// CreateOrderRequest represents an order creation payload
type CreateOrderRequest struct {
	CustomerID string             `json:"customer_id" binding:"required"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1"`
	Currency   string             `json:"currency,omitempty"`
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateStockRequest represents a stock level change
type UpdateStockRequest struct {
	Quantity  int     `json:"quantity" binding:"required"`
	Operation StockOp `json:"operation,omitempty"` // set, add or subtract; default set
}

// UpdateOrderStatusRequest represents an order status transition
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// SearchProductsRequest represents a structured catalog search
type SearchProductsRequest struct {
	Query       string   `json:"query" binding:"required"`
	Category    *string  `json:"category,omitempty"`
	PriceMin    *float64 `json:"price_min,omitempty"`
	PriceMax    *float64 `json:"price_max,omitempty"`
	InStockOnly bool     `json:"in_stock_only,omitempty"`
}

// SemanticSearchRequest represents an embedding-based catalog search
type SemanticSearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit,omitempty"`
}

// InterpretLog is one classification outcome recorded for analysis
type InterpretLog struct {
	RequestID      string  `json:"request_id" db:"id"`
	Message        string  `json:"message" db:"message"`
	Source         string  `json:"source" db:"source"`
	Action         string  `json:"action" db:"action"`
	Intent         string  `json:"intent" db:"intent"`
	Confidence     float64 `json:"confidence" db:"confidence"`
	RequiresAction bool    `json:"requires_action" db:"requires_action"`
	Parameters     Params  `json:"parameters" db:"-"`
	TookMs         int64   `json:"took_ms" db:"took_ms"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem represents a single embedding with product info
type EmbeddingItem struct {
	ProductID string    `json:"product_id" binding:"required"`
	Embedding []float32 `json:"embedding" binding:"required"`
	Text      string    `json:"text,omitempty"` // The text used to generate embedding
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
