package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"egile/internal/config"
	"egile/internal/model"
	"egile/internal/utils"
)

// GrokClient handles OpenAI-compatible API interactions with the xAI API as
// the primary target
type GrokClient struct {
	config      *config.GrokConfig
	httpClient  *http.Client
	chunkParser StreamChunkParser // Provider-specific chunk parser
}

// NewGrokClient creates a new client with auto-detection of the provider
func NewGrokClient(cfg *config.GrokConfig) *GrokClient {
	// Auto-detect provider based on base URL
	var parser StreamChunkParser
	if IsXAIProvider(cfg.APIBase) {
		parser = &XAIStreamChunkParser{}
		log.Printf("🔧 Detected xAI API provider (supports reasoning/thinking)")
	} else if IsOpenAIProvider(cfg.APIBase) {
		parser = &OpenAIStreamChunkParser{}
		log.Printf("🔧 Detected OpenAI API provider")
	} else {
		// Default to OpenAI format for unknown providers
		parser = &OpenAIStreamChunkParser{}
		log.Printf("🔧 Using standard OpenAI format for: %s", cfg.APIBase)
	}

	return &GrokClient{
		config:      cfg,
		chunkParser: parser,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *GrokClient) IsEnabled() bool {
	return c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	TopP           float64         `json:"top_p,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// EmbeddingRequest represents an embedding request
type EmbeddingRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

// EmbeddingResponse represents the embedding API response
type EmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a chat completion request
func (c *GrokClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("xAI API is not enabled (missing API key)")
	}

	// Use configured model and sampling defaults if not specified
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.TopP == 0 && c.config.ChatTopP > 0 {
		req.TopP = c.config.ChatTopP
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// ChatCompletionStream performs a streaming chat completion request
func (c *GrokClient) ChatCompletionStream(ctx context.Context, req ChatCompletionRequest, callback StreamCallback) error {
	if !c.config.Enabled {
		return fmt.Errorf("xAI API is not enabled (missing API key)")
	}

	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}
	if req.TopP == 0 && c.config.ChatTopP > 0 {
		req.TopP = c.config.ChatTopP
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	// Enable streaming
	req.Stream = true

	reqBody, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	// Process streaming response
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read stream: %w", err)
		}

		// Skip empty lines
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Parse SSE format: "data: {...}"
		if bytes.HasPrefix(line, []byte("data: ")) {
			data := bytes.TrimPrefix(line, []byte("data: "))

			// Check for [DONE] marker
			if bytes.Equal(data, []byte("[DONE]")) {
				break
			}

			// Parse chunk using provider-specific parser
			chunk, err := c.chunkParser.ParseChunk(data)
			if err != nil {
				log.Printf("Warning: Failed to parse stream chunk: %v", err)
				continue
			}

			if err := callback(chunk); err != nil {
				return fmt.Errorf("callback error: %w", err)
			}
		}
	}

	return nil
}

// CreateEmbeddings creates embeddings for the given texts
func (c *GrokClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("xAI API is not enabled (missing API key)")
	}
	if c.config.EmbeddingModel == "" {
		return nil, fmt.Errorf("embedding model is not configured")
	}

	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	// Process in batches
	allEmbeddings := make([][]float32, 0, len(texts))
	batchSize := c.config.BatchSize

	for i := 0; i < len(texts); i += batchSize {
		end := i + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		embeddings, err := c.createEmbeddingBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings for batch %d: %w", i/batchSize, err)
		}

		allEmbeddings = append(allEmbeddings, embeddings...)

		// Rate limiting: small delay between batches
		if end < len(texts) {
			time.Sleep(100 * time.Millisecond)
		}
	}

	return allEmbeddings, nil
}

// createEmbeddingBatch creates embeddings for a single batch
func (c *GrokClient) createEmbeddingBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := EmbeddingRequest{
		Model:          c.config.EmbeddingModel,
		Input:          texts,
		Dimensions:     c.config.EmbeddingDimensions,
		EncodingFormat: "float",
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/embeddings", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result EmbeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	// Extract embeddings in order
	embeddings := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < len(embeddings) {
			embeddings[item.Index] = item.Embedding
		}
	}

	log.Printf("Created %d embeddings using model %s (tokens: %d)", len(embeddings), result.Model, result.Usage.TotalTokens)

	return embeddings, nil
}

const intentSystemPrompt = `You are the intent classifier for an e-commerce operations assistant. Classify the user's message into exactly one action and extract its parameters.

Respond ONLY with valid JSON of this exact shape:
{"intent": "<short_label>", "action": "<action>", "parameters": {...}, "requires_action": <bool>, "confidence": <0.0-1.0>}

Valid actions:
- search_products: find products by text, category or price range
- get_product: fetch one product by product_id or sku
- list_products: list the whole catalog
- create_product: add a product (needs name, price, sku, category, stock_quantity)
- get_customer: fetch one customer by customer_id or email
- list_customers: list all customers
- create_customer: add a customer (needs email, first_name, last_name)
- create_order: place an order (needs customer and items)
- get_order: fetch one order by order_id
- list_orders: list all orders
- update_stock: change a product's stock level
- get_low_stock_products: list products running low
- get_best_customer: customer with the highest spend
- get_expensive_products: highest priced products
- get_most_sold_products: best selling products
- help_create_customer, help_create_order, help_create_product: the user asks HOW to do it, or required details are missing
- help_choose_customer_contact: the user asks how to reach a customer
- unknown: anything else

Parameter keys (include only what the message states):
query, category, price_min, price_max, in_stock_only, product_mention, product_id, sku, name, description, price, stock_quantity, quantity, delta, stock_level, items, customer, customer_id, email, first_name, last_name, phone, order_id, limit, threshold

Rules:
- items is an array of {"product_mention": "<text>", "quantity": <n>} in the order mentioned
- product references by name go in product_mention, never in product_id
- "by N" / "add N" stock changes are delta; "to N" is stock_level
- requires_action is true only when the action can run with the extracted parameters
- for how-to questions use the help_* action with requires_action false
- confidence is your classification certainty between 0.0 and 1.0

Examples:
Message: "show me all products"
Response: {"intent": "product_list", "action": "list_products", "parameters": {}, "requires_action": true, "confidence": 0.97}

Message: "create order for demo for 2 microphone egile and 1 test laptop"
Response: {"intent": "order_creation", "action": "create_order", "parameters": {"customer": "demo", "items": [{"product_mention": "microphone egile", "quantity": 2}, {"product_mention": "test laptop", "quantity": 1}]}, "requires_action": true, "confidence": 0.93}

Message: "update stock of Test Laptop by 5"
Response: {"intent": "stock_update", "action": "update_stock", "parameters": {"product_mention": "Test Laptop", "delta": 5}, "requires_action": true, "confidence": 0.94}

Message: "how do I add a customer?"
Response: {"intent": "customer_creation_help", "action": "help_create_customer", "parameters": {}, "requires_action": false, "confidence": 0.9}`

// AnalyzeIntent classifies a user message into a structured intent
func (c *GrokClient) AnalyzeIntent(ctx context.Context, message string) (*AIIntentResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("xAI API is not enabled")
	}

	req := ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []ChatMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: message},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from xAI")
	}

	// Use robust JSON parser to handle various AI output formats
	var result AIIntentResponse
	content := resp.Choices[0].Message.Content
	if err := utils.ParseAIJSON(content, &result); err != nil {
		log.Printf("Failed to parse AI response, content: %s", content)
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	// Validate the response structure
	if err := c.validateIntentResponse(&result); err != nil {
		return nil, fmt.Errorf("AI response validation failed: %w", err)
	}

	return &result, nil
}

// AnalyzeIntentStream classifies a user message with streaming progress
func (c *GrokClient) AnalyzeIntentStream(ctx context.Context, message string, callback func(thinking, content string) error) (*AIIntentResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("xAI API is not enabled")
	}

	req := ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []ChatMessage{
			{Role: "system", Content: intentSystemPrompt},
			{Role: "user", Content: message},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	// Accumulate the response
	var fullContent strings.Builder

	err := c.ChatCompletionStream(ctx, req, func(chunk *StreamChunk) error {
		if chunk.ThinkingContent != "" {
			if err := callback(chunk.ThinkingContent, ""); err != nil {
				return err
			}
		}
		if chunk.Content != "" {
			fullContent.WriteString(chunk.Content)
			if err := callback("", chunk.Content); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("streaming error: %w", err)
	}

	content := fullContent.String()
	var result AIIntentResponse
	if err := utils.ParseAIJSON(content, &result); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (content: %s)", err, content)
	}

	if err := c.validateIntentResponse(&result); err != nil {
		return nil, fmt.Errorf("AI response validation failed: %w", err)
	}

	return &result, nil
}

// validateIntentResponse validates the AI response using business rules
func (c *GrokClient) validateIntentResponse(resp *AIIntentResponse) error {
	if resp.Action != nil {
		if _, ok := model.ParseAction(*resp.Action); !ok {
			return fmt.Errorf("invalid action: %s", *resp.Action)
		}
	}

	if resp.Confidence != nil && (*resp.Confidence < 0 || *resp.Confidence > 1) {
		return fmt.Errorf("confidence must be between 0 and 1, got %f", *resp.Confidence)
	}

	if p := resp.Parameters; p != nil {
		if p.PriceMin != nil && p.PriceMax != nil && *p.PriceMin > *p.PriceMax {
			return fmt.Errorf("price_min (%f) cannot be greater than price_max (%f)", *p.PriceMin, *p.PriceMax)
		}
		if p.Quantity != nil && *p.Quantity < 1 {
			return fmt.Errorf("quantity must be at least 1")
		}
		for _, item := range p.Items {
			if item.Quantity < 1 {
				return fmt.Errorf("item quantity for %q must be at least 1", item.ProductMention)
			}
		}
		if p.Limit != nil && *p.Limit < 1 {
			return fmt.Errorf("limit must be at least 1")
		}
		if p.Threshold != nil && *p.Threshold < 0 {
			return fmt.Errorf("threshold cannot be negative")
		}
		if p.StockLevel != nil && *p.StockLevel < 0 {
			return fmt.Errorf("stock_level cannot be negative")
		}
	}

	return nil
}
