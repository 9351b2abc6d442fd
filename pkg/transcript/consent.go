package transcript

import (
	"sort"
	"sync"
)

// ConsentSet tracks which detected speakers have been explicitly approved.
// It starts empty on every new recording: returning speakers must be
// re-approved, consent never persists across a clear.
type ConsentSet struct {
	mu  sync.RWMutex
	ids map[int]struct{}
}

func NewConsentSet() *ConsentSet {
	return &ConsentSet{ids: make(map[int]struct{})}
}

// Toggle flips membership for a speaker id and returns the new state.
func (c *ConsentSet) Toggle(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ids[id]; ok {
		delete(c.ids, id)
		return false
	}
	c.ids[id] = struct{}{}
	return true
}

func (c *ConsentSet) Has(id int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// IDs returns the sorted approved speaker ids.
func (c *ConsentSet) IDs() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]int, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

func (c *ConsentSet) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ids)
}

// Clear empties the set. Called on every new recording start.
func (c *ConsentSet) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = make(map[int]struct{})
}
