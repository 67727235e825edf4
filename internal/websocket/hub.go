package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/service"

	"github.com/redis/go-redis/v9"
)

// Redis channel carrying session close events between instances.
const sessionEventsChannel = "chat_session_events"

type Hub struct {
	// Registered clients map: SessionID -> list of connections (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance session closes
	rdb *redis.Client

	// Assistant pipeline invoked for inbound chat messages
	assistantService service.IAssistantService

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(assistantService service.IAssistantService, rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		clients:          make(map[string][]*Client),
		rdb:              rdb,
		assistantService: assistantService,
		logger:           log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Chat client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						// Remove from slice
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session fully disconnected", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// CloseSession disconnects every live chat socket bound to the session,
// locally and on other instances through Redis.
func (h *Hub) CloseSession(sessionID string) {
	h.closeLocal(sessionID)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]string{"session_id": sessionID})
		h.rdb.Publish(context.Background(), sessionEventsChannel, payload)
	}
}

func (h *Hub) closeLocal(sessionID string) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[sessionID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the session events channel. When a close
	// arrives, each instance drops whatever sockets it holds locally for
	// that session. Instances without the session simply no-op.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, sessionEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			SessionID string `json:"session_id"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.SessionID == "" {
			continue
		}
		h.closeLocal(payload.SessionID)
	}
}
