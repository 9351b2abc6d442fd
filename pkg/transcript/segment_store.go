package transcript

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// Segment is one speech-to-text result unit with speaker and finality.
type Segment struct {
	Speaker int    `json:"speaker"`
	Text    string `json:"text"`
	IsFinal bool   `json:"isFinal"`
}

// MarkerSpeaker is the synthetic speaker id carried by pause markers.
const MarkerSpeaker = -1

var pauseMarkerRe = regexp.MustCompile(`\[\[PAUSE \d{2}:\d{2}:\d{2}\]\]`)

// PauseMarker renders the synthetic timestamp anchor inserted after a
// silence timeout, e.g. "[[PAUSE 14:03:21]]".
func PauseMarker(at time.Time) string {
	return fmt.Sprintf("[[PAUSE %s]]", at.Format("15:04:05"))
}

// IsPauseMarker reports whether a segment text is exactly a pause marker.
func IsPauseMarker(text string) bool {
	trimmed := strings.TrimSpace(text)
	return pauseMarkerRe.MatchString(trimmed) && len(trimmed) == len("[[PAUSE 00:00:00]]")
}

// StripPauseMarkers removes every pause marker occurrence from a string.
func StripPauseMarkers(s string) string {
	return pauseMarkerRe.ReplaceAllString(s, "")
}

// SegmentStore is the ordered, append-only log of speech segments.
// The only mutable element is the last one, and only while it is interim:
// evolving partial results from the provider overwrite it in place until a
// final result lands. Pause markers are immutable anchors that force the
// next result to open a fresh segment.
type SegmentStore struct {
	mu       sync.Mutex
	segments []Segment
	speakers map[int]struct{}
}

func NewSegmentStore() *SegmentStore {
	return &SegmentStore{
		speakers: make(map[int]struct{}),
	}
}

// Append applies one partial/final transcription result.
func (s *SegmentStore) Append(speaker int, text string, isFinal bool) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.speakers[speaker] = struct{}{}

	incoming := Segment{Speaker: speaker, Text: text, IsFinal: isFinal}

	if len(s.segments) == 0 {
		s.segments = append(s.segments, incoming)
		return
	}

	last := s.segments[len(s.segments)-1]
	switch {
	case IsPauseMarker(last.Text):
		// A marker closes the prior utterance unconditionally.
		s.segments = append(s.segments, incoming)
	case !last.IsFinal:
		// Correction path: interim results are overwritten, never stacked.
		s.segments[len(s.segments)-1] = incoming
	default:
		s.segments = append(s.segments, incoming)
	}
}

// InsertPauseMarker appends a pause marker stamped with the given wall-clock
// time. It is a no-op unless the last segment is final and not itself a
// marker, so markers never stack and never clobber an in-flight correction.
func (s *SegmentStore) InsertPauseMarker(at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.segments) == 0 {
		return false
	}
	last := s.segments[len(s.segments)-1]
	if !last.IsFinal || IsPauseMarker(last.Text) {
		return false
	}

	s.segments = append(s.segments, Segment{
		Speaker: MarkerSpeaker,
		Text:    PauseMarker(at),
		IsFinal: true,
	})
	return true
}

// Segments returns a snapshot copy of the log.
func (s *SegmentStore) Segments() []Segment {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Len returns the current number of segments, markers included.
func (s *SegmentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.segments)
}

// Speakers returns the sorted set of speaker ids detected so far,
// regardless of consent.
func (s *SegmentStore) Speakers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.speakers))
	for id := range s.speakers {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// VisibleText joins the texts of consented segments in store order.
// Pause markers are synthetic anchors, not speech: they ride along only
// when at least one consented speech segment exists. With nothing
// consented the visible transcript is empty no matter what was detected.
func (s *SegmentStore) VisibleText(consent *ConsentSet) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	hasSpeech := false
	for _, seg := range s.segments {
		if !IsPauseMarker(seg.Text) && consent.Has(seg.Speaker) {
			hasSpeech = true
			break
		}
	}
	if !hasSpeech {
		return ""
	}

	parts := make([]string, 0, len(s.segments))
	for _, seg := range s.segments {
		if IsPauseMarker(seg.Text) || consent.Has(seg.Speaker) {
			parts = append(parts, seg.Text)
		}
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

// RawText joins every speech segment regardless of consent, markers
// stripped. Used to distinguish "no speech at all" from "no consented
// speech".
func (s *SegmentStore) RawText() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := make([]string, 0, len(s.segments))
	for _, seg := range s.segments {
		if IsPauseMarker(seg.Text) {
			continue
		}
		parts = append(parts, seg.Text)
	}
	return collapseWhitespace(strings.Join(parts, " "))
}

// Clear resets the store to empty and forgets detected speakers.
func (s *SegmentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.segments = nil
	s.speakers = make(map[int]struct{})
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
