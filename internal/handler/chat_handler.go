package handler

import (
	"ai-shopassist-be/internal/pkg/logger"
	internalWS "ai-shopassist-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type ChatHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatHandler(hub *internalWS.Hub, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the connection and binds it to a chat session. The client
// may hand over an existing session id, otherwise the server issues a fresh
// one and returns it inside every response envelope.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Upgrade via Fiber WebSocket Middleware
	// We handle the upgrade here using the helper which automatically hijacks the connection
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatHandler", "Starting chat session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("ChatHandler", "Chat session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the chat websocket route.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/assistant", h.ServeWs)
}
