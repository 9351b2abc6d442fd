package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs handles a websocket connection for one recording session.
// Inbound binary frames flow to the audio sink; outbound frames carry
// live updates and notifications from the hub.
func ServeWs(hub *Hub, c *websocket.Conn, userID uuid.UUID, sessionID string, sink AudioSink) {
	client := &Client{
		Hub:       hub,
		Conn:      c,
		UserID:    userID,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		audioSink: sink,
	}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // runs in the handler goroutine
}
