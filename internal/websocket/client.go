package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"ai-shopassist-be/internal/dto"
	"ai-shopassist-be/internal/pkg/serverutils"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID this chat connection is bound to.
	SessionID string

	// Buffered channel of outbound messages.
	Send chan []byte
}

// readPump pumps queries from the websocket connection into the assistant.
func (c *Client) readPump() {
	defer func() {
		log.Printf("readPump exiting for session %s", c.SessionID)
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	log.Printf("readPump started for session %s", c.SessionID)
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("readPump error for session %s: %v", c.SessionID, err)
			}
			break
		}
		// Answering can take a while, keep reading (and answering pings)
		// while the assistant works.
		go c.handleQuery(raw)
	}
}

// handleQuery runs one inbound chat message through the assistant and sends
// the response envelope back on this connection.
func (c *Client) handleQuery(raw []byte) {
	var req dto.QueryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.reply(serverutils.ErrorResponse(400, "Invalid message format"))
		return
	}
	// The connection owns the session, ignore whatever the client sent.
	req.SessionId = c.SessionID

	if err := serverutils.ValidateRequest(req); err != nil {
		var verr *serverutils.ValidationError
		if errors.As(err, &verr) {
			c.reply(serverutils.ErrorResponseWithData(400, "Validation failed", verr.Fields))
			return
		}
		c.reply(serverutils.ErrorResponse(400, "Invalid request"))
		return
	}

	res, err := c.Hub.assistantService.Query(context.Background(), &req)
	if err != nil {
		log.Printf("[ERROR] Chat query failed for session %s: %v", c.SessionID, err)
		c.reply(serverutils.ErrorResponse(500, "Internal server error"))
		return
	}

	c.reply(serverutils.SuccessResponse("Success assistant query", res))
}

func (c *Client) reply(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		// Buffer full, the hub will close the connection.
		c.Hub.unregister <- c
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		log.Printf("writePump exiting for session %s", c.SessionID)
		ticker.Stop()
		c.Conn.Close()
	}()

	log.Printf("writePump started for session %s", c.SessionID)
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued chat messages to the current websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("writePump Ping error for session %s: %v", c.SessionID, err)
				return
			}
		}
	}
}
