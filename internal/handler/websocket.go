package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"egile/internal/model"
	"egile/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler bridges the assistant to WebSocket clients. The frame protocol:
// inbound "chat_message" frames carry the user text; the server answers with
// "typing" while working and "agent" with the reply, and sends
// "connection_confirmed" once after the upgrade. Anything malformed gets an
// "error" frame and the connection stays open.
type WSHandler struct {
	assistant      *service.Assistant
	processTimeout time.Duration
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WebSocket handler
func NewWSHandler(assistant *service.Assistant, processTimeout time.Duration) *WSHandler {
	if processTimeout <= 0 {
		processTimeout = 60 * time.Second
	}
	return &WSHandler{
		assistant:      assistant,
		processTimeout: processTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is enforced at the HTTP layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("⚠️ WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	h.send(conn, model.WSMessage{
		Type:    "connection_confirmed",
		Message: "Connected to the store assistant",
	})

	for {
		var frame model.WSMessage
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ WebSocket read error: %v", err)
			}
			return
		}

		switch frame.Type {
		case "chat_message":
			if frame.Message == "" {
				h.send(conn, model.WSMessage{Type: "error", Message: "Empty message"})
				continue
			}
			h.handleChat(c.Request.Context(), conn, frame.Message)
		case "ping":
			h.send(conn, model.WSMessage{Type: "pong"})
		default:
			h.send(conn, model.WSMessage{Type: "error", Message: "Unknown message type: " + frame.Type})
		}
	}
}

func (h *WSHandler) handleChat(parent context.Context, conn *websocket.Conn, message string) {
	h.send(conn, model.WSMessage{Type: "typing", Message: "Processing your request..."})

	ctx, cancel := context.WithTimeout(parent, h.processTimeout)
	defer cancel()

	resp := h.assistant.ProcessMessage(ctx, message)
	h.send(conn, model.WSMessage{
		Type:    "agent",
		Message: resp.Reply,
		Intent:  resp.Intent,
	})
}

func (h *WSHandler) send(conn *websocket.Conn, msg model.WSMessage) {
	if msg.Timestamp == "" {
		msg.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("⚠️ WebSocket write error: %v", err)
	}
}
