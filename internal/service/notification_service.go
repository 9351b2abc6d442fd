package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/model"
	"incident-reporting-be/internal/pkg/logger"
	"incident-reporting-be/pkg/events"
	pktNats "incident-reporting-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationService turns bus events into push notifications for the
// reporting user's connected devices. Notifications are ephemeral; they
// are not persisted.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   LiveDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery LiveDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "report-notify-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	// Subscribed events carry the full NATS subject as their type.
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	uidStr, ok := payload["user_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", "Event without user_id, dropping", map[string]interface{}{"type": typeCode})
		return nil
	}
	userID, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event with malformed user_id, dropping", map[string]interface{}{"type": typeCode})
		return nil
	}

	notif, ok := s.buildNotification(userID, typeCode, event)
	if !ok {
		// Unknown event types are acked, not retried.
		return nil
	}

	if s.delivery != nil {
		s.delivery.Send(userID, "notification", notif)
	}
	return nil
}

func (s *NotificationService) buildNotification(userID uuid.UUID, typeCode string, event events.Event) (model.Notification, bool) {
	payload := event.Payload()

	switch typeCode {
	case constant.EventReportCompleted:
		mode, _ := payload["mode"].(string)
		category, _ := payload["category"].(string)
		msg := fmt.Sprintf("Your %s incident report is ready.", mode)
		if category != "" {
			msg = fmt.Sprintf("Your %s incident report is ready: %s.", mode, category)
		}
		return model.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			TypeCode:  typeCode,
			Title:     "Report completed",
			Message:   msg,
			CreatedAt: time.Now(),
		}, true
	default:
		return model.Notification{}, false
	}
}
