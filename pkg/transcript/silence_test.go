package transcript

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchdogFiresAfterTimeout(t *testing.T) {
	var fired atomic.Int32
	w := NewSilenceWatchdog(20*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})
	defer w.Stop()

	w.Arm()
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(1), fired.Load())
}

func TestWatchdogResetCancelsPendingFire(t *testing.T) {
	var fired atomic.Int32
	w := NewSilenceWatchdog(30*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})
	defer w.Stop()

	w.Arm()
	time.Sleep(10 * time.Millisecond)
	w.Reset()
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
}

func TestWatchdogRearmRestartsCountdown(t *testing.T) {
	var fired atomic.Int32
	w := NewSilenceWatchdog(50*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})
	defer w.Stop()

	w.Arm()
	time.Sleep(30 * time.Millisecond)
	w.Arm()
	time.Sleep(30 * time.Millisecond)

	// 60ms elapsed overall but only 30ms since the re-arm.
	assert.Equal(t, int32(0), fired.Load())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())
}

func TestWatchdogStopIsTerminal(t *testing.T) {
	var fired atomic.Int32
	w := NewSilenceWatchdog(10*time.Millisecond, func(time.Time) {
		fired.Add(1)
	})

	w.Arm()
	w.Stop()
	w.Stop()
	w.Arm()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
}

func TestConsentToggleRoundTrip(t *testing.T) {
	c := NewConsentSet()

	assert.True(t, c.Toggle(3))
	assert.True(t, c.Has(3))
	assert.False(t, c.Toggle(3))
	assert.False(t, c.Has(3))
	assert.Equal(t, 0, c.Len())
}

func TestConsentIDsSortedAndClear(t *testing.T) {
	c := NewConsentSet()
	c.Toggle(2)
	c.Toggle(0)
	c.Toggle(1)

	assert.Equal(t, []int{0, 1, 2}, c.IDs())

	c.Clear()
	assert.Empty(t, c.IDs())
	assert.Equal(t, 0, c.Len())
}
