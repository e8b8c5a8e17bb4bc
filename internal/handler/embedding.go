package handler

import (
	"net/http"
	"strconv"

	"egile/internal/model"
	"egile/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler handles embedding-related HTTP requests. It is only
// registered when the Postgres backend and an embedding provider are both
// configured.
type EmbeddingHandler struct {
	embeddings *service.EmbeddingService
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(embeddings *service.EmbeddingService) *EmbeddingHandler {
	return &EmbeddingHandler{
		embeddings: embeddings,
	}
}

// BatchUpdate handles POST /api/v1/embeddings/batch
func (h *EmbeddingHandler) BatchUpdate(c *gin.Context) {
	var req model.EmbeddingBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Embeddings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No embeddings provided"})
		return
	}

	response, err := h.embeddings.UpdateEmbeddings(c.Request.Context(), req.Embeddings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(response.Errors) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}

// Reindex handles POST /api/v1/embeddings/reindex
func (h *EmbeddingHandler) Reindex(c *gin.Context) {
	response, err := h.embeddings.ReindexProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reindex failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, response)
}

// SemanticSearch handles POST /api/v1/products/semantic-search
func (h *EmbeddingHandler) SemanticSearch(c *gin.Context) {
	var req model.SemanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.Limit <= 0 {
		if s := c.Query("limit"); s != "" {
			req.Limit, _ = strconv.Atoi(s)
		}
	}

	products, err := h.embeddings.SemanticSearch(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Semantic search failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}
