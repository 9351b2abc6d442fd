package transcript

import "strings"

// NoteExtractor derives field notes from a transcript string. The default
// implementation is phrase-driven; the interface exists so callers are not
// coupled to the scanning strategy.
type NoteExtractor interface {
	Extract(transcript string) []string
}

var (
	noteTriggers = []string{
		"add note to self",
		"note to self",
		"take a note",
		"important note",
		"make a note",
	}
	noteTerminators = []string{
		"end note",
		"close note",
		"end of note",
		"that's it",
		"that is it",
	}
)

// PhraseExtractor scans case-insensitively for spoken note triggers and
// captures the span up to the nearest terminator. Each call replaces the
// caller's note list wholesale; nothing is accumulated here.
type PhraseExtractor struct {
	triggers    []string
	terminators []string
}

func NewPhraseExtractor() *PhraseExtractor {
	return &PhraseExtractor{
		triggers:    noteTriggers,
		terminators: noteTerminators,
	}
}

// Extract returns the notes found in one left-to-right pass. A captured
// span starts right after its trigger and ends at the earliest of: the next
// trigger, an end phrase, sentence punctuation ('.' or '?', included in the
// span), or a pause marker (excluded). Spans of trimmed length <= 3 are
// discarded and exact repeats are deduplicated.
func (e *PhraseExtractor) Extract(transcript string) []string {
	lower := strings.ToLower(transcript)

	notes := make([]string, 0, 2)
	seen := make(map[string]struct{})
	cursor := 0

	for {
		trigIdx, trigLen := findEarliestPhrase(lower, cursor, e.triggers)
		if trigIdx < 0 {
			break
		}
		start := trigIdx + trigLen

		// Default: capture to the end of the transcript.
		termStart, spanEnd, next := len(lower), len(lower), len(lower)

		if idx, _ := findEarliestPhrase(lower, start, e.triggers); idx >= 0 && idx < termStart {
			termStart, spanEnd, next = idx, idx, idx
		}
		if idx, length := findEarliestPhrase(lower, start, e.terminators); idx >= 0 && idx < termStart {
			termStart, spanEnd, next = idx, idx, idx+length
		}
		if idx := indexAnyFrom(lower, start, ".?"); idx >= 0 && idx < termStart {
			termStart, spanEnd, next = idx, idx+1, idx+1
		}
		if loc := pauseMarkerRe.FindStringIndex(transcript[start:]); loc != nil && start+loc[0] < termStart {
			termStart, spanEnd, next = start+loc[0], start+loc[0], start+loc[1]
		}

		span := StripPauseMarkers(transcript[start:spanEnd])
		note := collapseWhitespace(span)
		if len(note) > 3 {
			if _, dup := seen[note]; !dup {
				seen[note] = struct{}{}
				notes = append(notes, note)
			}
		}

		if next <= cursor {
			break
		}
		cursor = next
	}

	return notes
}

// findEarliestPhrase returns the position and length of the earliest
// occurrence of any phrase at or after from. Ties prefer the longest phrase
// so "add note to self" wins over its embedded "note to self".
func findEarliestPhrase(lower string, from int, phrases []string) (int, int) {
	if from >= len(lower) {
		return -1, 0
	}

	bestIdx, bestLen := -1, 0
	for _, phrase := range phrases {
		idx := strings.Index(lower[from:], phrase)
		if idx < 0 {
			continue
		}
		abs := from + idx
		if bestIdx < 0 || abs < bestIdx || (abs == bestIdx && len(phrase) > bestLen) {
			bestIdx, bestLen = abs, len(phrase)
		}
	}
	return bestIdx, bestLen
}

func indexAnyFrom(s string, from int, chars string) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.IndexAny(s[from:], chars)
	if idx < 0 {
		return -1
	}
	return from + idx
}
