package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "report_completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the bus.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewReportCompleted builds the event published when a recording is
// finalized into a completed report.
func NewReportCompleted(reportID, userID, mode, category string) Event {
	return BaseEvent{
		Type: "report_completed",
		Data: map[string]interface{}{
			"report_id": reportID,
			"user_id":   userID,
			"mode":      mode,
			"category":  category,
		},
		OccurredAt: time.Now(),
	}
}
