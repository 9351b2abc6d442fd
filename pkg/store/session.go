package store

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
	"incident-reporting-be/pkg/transcript"
)

// RecordingSession is the in-memory state of one active recording. The
// report id doubles as the session id: it is minted at start and reused
// by every autosave tick and by the final persisted report.
type RecordingSession struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Mode   string `json:"mode"`

	// Transcript recovered from a prior in_progress record; the live
	// transcript is appended after it on every read.
	Recovered string `json:"recovered"`

	Segments *transcript.SegmentStore
	Consent  *transcript.ConsentSet
	Toggles  *checklist.ToggleLedger

	mu           sync.RWMutex
	items        []checklist.Item
	notes        []string
	manualEvents []oracle.TimelineEntry
}

func NewRecordingSession(userID uuid.UUID, mode string, recovered string) *RecordingSession {
	return &RecordingSession{
		ID:        uuid.New().String(),
		UserID:    userID.String(),
		Mode:      mode,
		Recovered: recovered,
		Segments:  transcript.NewSegmentStore(),
		Consent:   transcript.NewConsentSet(),
		Toggles:   checklist.NewToggleLedger(),
	}
}

// VisibleTranscript is the consent-gated transcript, with any recovered
// text from a resumed session prepended.
func (s *RecordingSession) VisibleTranscript() string {
	live := s.Segments.VisibleText(s.Consent)
	return joinNonEmpty(s.Recovered, live)
}

// RawSpeech is every detected speech segment regardless of consent. Used
// only to tell "no speech at all" apart from "no consented speech".
func (s *RecordingSession) RawSpeech() string {
	return joinNonEmpty(transcript.StripPauseMarkers(s.Recovered), s.Segments.RawText())
}

func (s *RecordingSession) Items() []checklist.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]checklist.Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *RecordingSession) SetItems(items []checklist.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// ToggleItem flips one item's completion by id and returns the new item
// state. The toggle is also recorded on the ledger so an in-flight
// reconciliation snapshot cannot undo it.
func (s *RecordingSession) ToggleItem(id string) (checklist.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].IsCompleted = !s.items[i].IsCompleted
			s.Toggles.Record(id, s.items[i].IsCompleted)
			return s.items[i], true
		}
	}
	return checklist.Item{}, false
}

// ApplyReconciled installs a reconciliation result, replaying ledger
// toggles under the same lock ToggleItem records them with. A toggle
// landing after the reconcile snapshot was taken is replayed over the
// result instead of being clobbered until the next cycle.
func (s *RecordingSession) ApplyReconciled(merged []checklist.Item) []checklist.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	merged = s.Toggles.Apply(merged)
	s.items = merged
	return merged
}

func (s *RecordingSession) Notes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.notes))
	copy(out, s.notes)
	return out
}

// SetNotes replaces the note list wholesale. Extraction re-runs over the
// full transcript, so accumulating here would duplicate.
func (s *RecordingSession) SetNotes(notes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

func (s *RecordingSession) AddManualEvent(event oracle.TimelineEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualEvents = append(s.manualEvents, event)
}

func (s *RecordingSession) ManualEvents() []oracle.TimelineEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]oracle.TimelineEntry, len(s.manualEvents))
	copy(out, s.manualEvents)
	return out
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}
