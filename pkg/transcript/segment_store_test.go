package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppendCollapsesInterimCorrections(t *testing.T) {
	store := NewSegmentStore()

	store.Append(0, "patient is", false)
	store.Append(0, "patient is un", false)
	store.Append(0, "patient is unresponsive", true)

	segs := store.Segments()
	assert.Len(t, segs, 1)
	assert.Equal(t, "patient is unresponsive", segs[0].Text)
	assert.True(t, segs[0].IsFinal)
}

func TestAppendAfterFinalOpensNewSegment(t *testing.T) {
	store := NewSegmentStore()

	store.Append(0, "engine one on scene", true)
	store.Append(1, "copy that", false)

	segs := store.Segments()
	assert.Len(t, segs, 2)
	assert.Equal(t, 1, segs[1].Speaker)
	assert.False(t, segs[1].IsFinal)
}

func TestAppendIgnoresEmptyText(t *testing.T) {
	store := NewSegmentStore()

	store.Append(0, "   ", true)

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Speakers())
}

func TestMarkerThenFinalAlwaysAppends(t *testing.T) {
	store := NewSegmentStore()
	at := time.Date(2025, 1, 2, 9, 5, 0, 0, time.Local)

	store.Append(0, "primary search complete", true)
	before := store.Len()

	assert.True(t, store.InsertPauseMarker(at))
	store.Append(0, "fire is knocked down", true)

	assert.Equal(t, before+2, store.Len())
	segs := store.Segments()
	assert.Equal(t, "[[PAUSE 09:05:00]]", segs[1].Text)
	assert.Equal(t, "fire is knocked down", segs[2].Text)
}

func TestMarkerClosesInterimUtterance(t *testing.T) {
	store := NewSegmentStore()

	store.Append(0, "vitals are", true)
	store.InsertPauseMarker(time.Now())

	// The segment after a marker must not merge into the pre-marker text,
	// even though the next result arrives as interim.
	store.Append(0, "bp one twenty", false)

	segs := store.Segments()
	assert.Len(t, segs, 3)
	assert.Equal(t, "bp one twenty", segs[2].Text)
}

func TestNoConsecutiveMarkers(t *testing.T) {
	store := NewSegmentStore()

	store.Append(0, "standing by", true)
	assert.True(t, store.InsertPauseMarker(time.Now()))
	assert.False(t, store.InsertPauseMarker(time.Now()))
	assert.Equal(t, 2, store.Len())
}

func TestNoMarkerOnEmptyOrInterimStore(t *testing.T) {
	store := NewSegmentStore()
	assert.False(t, store.InsertPauseMarker(time.Now()))

	store.Append(0, "still talking", false)
	assert.False(t, store.InsertPauseMarker(time.Now()))
}

func TestVisibleTextFiltersByConsent(t *testing.T) {
	store := NewSegmentStore()
	consent := NewConsentSet()

	store.Append(0, "medic one to dispatch", true)
	store.Append(1, "go ahead medic one", true)

	assert.Equal(t, "", store.VisibleText(consent))

	consent.Toggle(0)
	assert.Equal(t, "medic one to dispatch", store.VisibleText(consent))

	consent.Toggle(1)
	assert.Equal(t, "medic one to dispatch go ahead medic one", store.VisibleText(consent))
}

func TestVisibleTextEmptyWithoutConsentedSpeech(t *testing.T) {
	store := NewSegmentStore()
	consent := NewConsentSet()

	store.Append(0, "unapproved speaker", true)
	store.InsertPauseMarker(time.Date(2025, 1, 2, 9, 5, 0, 0, time.Local))

	// Markers never leak into the visible transcript on their own.
	assert.Equal(t, "", store.VisibleText(consent))

	consent.Toggle(0)
	assert.Equal(t, "unapproved speaker [[PAUSE 09:05:00]]", store.VisibleText(consent))

	consent.Toggle(0)
	assert.Equal(t, "", store.VisibleText(consent))
}

func TestVisibleTextKeepsMarkersRawTextDropsThem(t *testing.T) {
	store := NewSegmentStore()
	consent := NewConsentSet()
	consent.Toggle(0)

	store.Append(0, "scene secure", true)
	store.InsertPauseMarker(time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local))
	store.Append(0, "beginning overhaul", true)

	assert.Equal(t, "scene secure [[PAUSE 10:00:00]] beginning overhaul", store.VisibleText(consent))
	assert.Equal(t, "scene secure beginning overhaul", store.RawText())
}

func TestSpeakersTracksDetectionIndependentOfConsent(t *testing.T) {
	store := NewSegmentStore()

	store.Append(2, "bystander statement", false)
	store.Append(0, "crew narration", true)

	assert.Equal(t, []int{0, 2}, store.Speakers())
}

func TestClearResetsSegmentsAndSpeakers(t *testing.T) {
	store := NewSegmentStore()
	store.Append(0, "something", true)

	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Speakers())
}

func TestIsPauseMarker(t *testing.T) {
	assert.True(t, IsPauseMarker("[[PAUSE 23:59:59]]"))
	assert.True(t, IsPauseMarker("  [[PAUSE 01:02:03]]  "))
	assert.False(t, IsPauseMarker("[[PAUSE 1:2:3]]"))
	assert.False(t, IsPauseMarker("pause here"))
	assert.False(t, IsPauseMarker("[[PAUSE 01:02:03]] trailing"))
}
