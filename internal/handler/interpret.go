package handler

import (
	"net/http"

	"egile/internal/engine"
	"egile/internal/model"

	"github.com/gin-gonic/gin"
)

// InterpretHandler exposes the rule engine directly, without the AI path or
// dispatch. It holds two engines so callers can opt out of catalog
// resolution and see the raw extraction.
type InterpretHandler struct {
	resolving *engine.Engine
	plain     *engine.Engine
}

// NewInterpretHandler creates a new interpret handler
func NewInterpretHandler(resolving, plain *engine.Engine) *InterpretHandler {
	return &InterpretHandler{
		resolving: resolving,
		plain:     plain,
	}
}

// Interpret handles POST /api/v1/interpret
func (h *InterpretHandler) Interpret(c *gin.Context) {
	var req model.InterpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	eng := h.resolving
	if req.Resolve != nil && !*req.Resolve {
		eng = h.plain
	}

	result := eng.Interpret(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, result)
}
