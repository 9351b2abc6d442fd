package model

import (
	"time"

	"github.com/google/uuid"

	"incident-reporting-be/pkg/checklist"
)

// LiveUpdate is the payload pushed over the websocket whenever a live
// session's derived state changes (new transcript text, reconciled
// checklist, re-extracted notes).
type LiveUpdate struct {
	SessionID         string           `json:"session_id"`
	Transcript        string           `json:"transcript"`
	Speakers          []int            `json:"speakers"`
	ConsentedSpeakers []int            `json:"consented_speakers"`
	Items             []checklist.Item `json:"items"`
	Notes             []string         `json:"notes"`
}

// Notification is a one-shot user-facing message, e.g. "report
// completed". Delivered over the websocket only; not persisted.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TypeCode  string    `json:"type_code"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
