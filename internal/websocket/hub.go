package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"incident-reporting-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans live session updates and notifications out to connected
// responders. Cross-instance delivery goes through the Redis
// "cluster_events" channel so a responder reconnecting through another
// instance still receives pushes.
type Hub struct {
	// UserID -> connected clients (multi-device)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"user_id":    client.UserID,
				"session_id": client.SessionID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserID})
				}
			}
			h.mu.Unlock()
		}
	}
}

func envelope(messageType string, data any) []byte {
	payload, _ := json.Marshal(map[string]any{
		"type": messageType,
		"data": data,
	})
	return payload
}

// Send pushes a typed message to every device of one user, locally and
// via Redis for other instances.
func (h *Hub) Send(userID uuid.UUID, messageType string, data any) {
	message := envelope(messageType, data)

	h.deliverLocal(userID, message)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]any{
			"target_user_id": userID.String(),
			"message":        json.RawMessage(message),
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

// Broadcast pushes a typed message to ALL connected clients on every
// instance.
func (h *Hub) Broadcast(messageType string, data any) {
	message := envelope(messageType, data)

	h.deliverAll(message)

	if h.rdb != nil {
		payload, _ := json.Marshal(map[string]any{
			"target_user_id": "*",
			"message":        json.RawMessage(message),
		})
		h.rdb.Publish(context.Background(), "cluster_events", payload)
	}
}

func (h *Hub) deliverLocal(userID uuid.UUID, message []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.clients[userID]...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.deliver(client, message)
	}
}

func (h *Hub) deliverAll(message []byte) {
	h.mu.RLock()
	var all []*Client
	for _, clients := range h.clients {
		all = append(all, clients...)
	}
	h.mu.RUnlock()

	for _, client := range all {
		h.deliver(client, message)
	}
}

// deliver is the single local delivery path. A client whose buffer is
// full gets unregistered; only the unregister handler in Run closes
// client.Send, so a slow client can never trigger a double close.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{
			"user_id": client.UserID,
		})
		h.unregister <- client
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to one shared channel; messages carry a
	// target user id ("*" for broadcast) and are delivered only to
	// locally connected clients.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload struct {
			TargetUserID string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetUserID == "*" {
			h.deliverAll(payload.Message)
			continue
		}

		uid, err := uuid.Parse(payload.TargetUserID)
		if err != nil {
			continue
		}
		h.deliverLocal(uid, payload.Message)
	}
}
