package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs wires an upgraded connection into the hub under its session id and
// blocks until the peer disconnects. The write side runs in its own
// goroutine; reads stay on the fiber handler goroutine, which keeps the
// connection's lifetime tied to the request.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string) {
	client := &Client{Hub: hub, Conn: c, SessionID: sessionID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
