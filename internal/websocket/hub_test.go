package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func registered(h *Hub, userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func TestSlowClientUnregisteredWithSingleClose(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 1)}
	h.register <- client
	require.Eventually(t, func() bool { return registered(h, userID) }, time.Second, 5*time.Millisecond)

	// First push fills the one-slot buffer, the second hits the full
	// buffer and drops the client.
	h.Send(userID, "live_update", "first")
	h.Send(userID, "live_update", "second")

	require.Eventually(t, func() bool { return !registered(h, userID) }, time.Second, 5*time.Millisecond)

	// The unregister handler owns the close: the buffered message drains,
	// then the channel reports closed exactly once.
	msg, open := <-client.Send
	assert.True(t, open)
	assert.Contains(t, string(msg), "first")
	_, open = <-client.Send
	assert.False(t, open)

	// A duplicate unregister, as a disconnecting read pump would send,
	// must be a no-op rather than a second close.
	h.unregister <- client

	// The hub still serves other clients afterwards.
	probe := &Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, 4)}
	h.register <- probe
	require.Eventually(t, func() bool { return registered(h, probe.UserID) }, time.Second, 5*time.Millisecond)
	h.Send(probe.UserID, "notification", "still alive")
	assert.Contains(t, string(<-probe.Send), "still alive")
}

func TestBroadcastSkipsFullBufferWithoutClosing(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	healthy := &Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, 4)}
	slow := &Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, 1)}
	h.register <- healthy
	h.register <- slow
	require.Eventually(t, func() bool {
		return registered(h, healthy.UserID) && registered(h, slow.UserID)
	}, time.Second, 5*time.Millisecond)

	h.Broadcast("notification", "one")
	h.Broadcast("notification", "two")

	require.Eventually(t, func() bool { return !registered(h, slow.UserID) }, time.Second, 5*time.Millisecond)
	assert.Contains(t, string(<-healthy.Send), "one")
	assert.Contains(t, string(<-healthy.Send), "two")
}
