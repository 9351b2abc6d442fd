package checklist

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
)

// Item is one live checklist entry shown during a recording.
type Item struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
	IsNew       bool   `json:"isNew"`
}

// Proposed is one checklist entry as returned by the analysis model,
// before it has been reconciled against the prior list.
type Proposed struct {
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

// ItemID derives a stable identifier from the item text. Case and
// whitespace differences map to the same id, so a re-worded completion
// state can still be matched across analysis cycles.
func ItemID(text string) string {
	h := fnv.New32a()
	h.Write([]byte(normalize(text)))
	return fmt.Sprintf("ci-%08x", h.Sum32())
}

func normalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Reconcile merges a fresh model proposal with the prior list. The model
// is authoritative for membership, ordering, and completion state; the
// prior list only determines which entries are flagged as newly appeared.
// Proposals with blank text or a duplicate id are dropped, first one wins.
func Reconcile(prior []Item, proposed []Proposed) []Item {
	known := make(map[string]struct{}, len(prior))
	for _, item := range prior {
		known[item.ID] = struct{}{}
	}

	out := make([]Item, 0, len(proposed))
	seen := make(map[string]struct{}, len(proposed))
	for _, p := range proposed {
		text := strings.Join(strings.Fields(p.Text), " ")
		if text == "" {
			continue
		}
		id := ItemID(text)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		_, existed := known[id]
		out = append(out, Item{
			ID:          id,
			Text:        text,
			IsCompleted: p.IsCompleted,
			IsNew:       !existed,
		})
	}
	return out
}

// ToggleLedger records manual completion toggles made while an analysis
// request is in flight. When the response lands, the recorded states are
// replayed over it so a responder's tap is never undone by a stale model
// snapshot. Cleared once replayed.
type ToggleLedger struct {
	mu      sync.Mutex
	pending map[string]bool
}

func NewToggleLedger() *ToggleLedger {
	return &ToggleLedger{pending: make(map[string]bool)}
}

// Record notes the state a manual toggle left an item in.
func (l *ToggleLedger) Record(id string, completed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending[id] = completed
}

// Apply overlays the recorded toggles onto a reconciled list and resets
// the ledger for the next cycle.
func (l *ToggleLedger) Apply(items []Item) []Item {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.pending) > 0 {
		for i := range items {
			if state, ok := l.pending[items[i].ID]; ok {
				items[i].IsCompleted = state
			}
		}
	}
	l.pending = make(map[string]bool)
	return items
}
