package transcript

import (
	"sync"
	"time"
)

// SilenceWatchdog drives pause-marker insertion. An utterance-end signal
// arms a single-shot timer; any new transcription result disarms it. If the
// timer fires, the callback runs with the current wall-clock time.
//
// State machine: Idle -> Armed (utterance end) -> fire -> Idle, with Reset
// returning to Idle from anywhere. Stop is terminal.
type SilenceWatchdog struct {
	mu      sync.Mutex
	timeout time.Duration
	fire    func(at time.Time)
	timer   *time.Timer
	stopped bool
}

func NewSilenceWatchdog(timeout time.Duration, fire func(at time.Time)) *SilenceWatchdog {
	return &SilenceWatchdog{timeout: timeout, fire: fire}
}

// Arm (re)starts the single-shot silence timer.
func (w *SilenceWatchdog) Arm() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.timeout, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.timer = nil
		w.mu.Unlock()
		w.fire(time.Now())
	})
}

// Reset cancels any pending timer without firing.
func (w *SilenceWatchdog) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Stop cancels any pending timer and refuses further arming. Idempotent.
func (w *SilenceWatchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
