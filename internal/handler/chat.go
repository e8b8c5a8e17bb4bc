package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"egile/internal/model"
	"egile/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles assistant chat requests
type ChatHandler struct {
	assistant      *service.Assistant
	processTimeout time.Duration
}

// NewChatHandler creates a new chat handler
func NewChatHandler(assistant *service.Assistant, processTimeout time.Duration) *ChatHandler {
	if processTimeout <= 0 {
		processTimeout = 60 * time.Second
	}
	return &ChatHandler{
		assistant:      assistant,
		processTimeout: processTimeout,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.processTimeout)
	defer cancel()

	resp := h.assistant.ProcessMessage(ctx, req.Message)
	c.JSON(http.StatusOK, resp)
}

// ChatStream handles POST /api/v1/chat/stream - SSE streaming chat
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.processTimeout)
	defer cancel()

	sendSSE(c, "start", map[string]any{"message": req.Message})
	flusher.Flush()

	resp, err := h.assistant.ProcessMessageStream(ctx, req.Message, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})

	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "response", resp)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
