package handler

import (
	"os"

	"incident-reporting-be/internal/pkg/logger"
	"incident-reporting-be/internal/service"
	internalWS "incident-reporting-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StreamHandler upgrades the per-session websocket that carries audio
// upstream and live updates downstream.
type StreamHandler struct {
	recordingService service.IRecordingService
	hub              *internalWS.Hub
	logger           logger.ILogger
}

func NewStreamHandler(recordingService service.IRecordingService, hub *internalWS.Hub, log logger.ILogger) *StreamHandler {
	return &StreamHandler{
		recordingService: recordingService,
		hub:              hub,
		logger:           log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *StreamHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on websocket handshakes, so the token
	// rides the query string; header auth stays for tooling.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("StreamHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	sessionID := c.Params("id")
	if !h.recordingService.Owns(sessionID, userID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recording session not found"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("StreamHandler", "Starting audio stream", map[string]interface{}{
				"user_id":    userID,
				"session_id": sessionID,
			})
			internalWS.ServeWs(h.hub, conn, userID, sessionID, h.recordingService.HandleAudio)
			h.logger.Info("StreamHandler", "Audio stream ended", map[string]interface{}{
				"user_id":    userID,
				"session_id": sessionID,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket stream route.
func (h *StreamHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/session/v1/:id/stream", h.ServeWs)
}
