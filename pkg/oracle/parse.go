package oracle

import (
	"encoding/json"
	"regexp"
	"strings"

	"incident-reporting-be/pkg/checklist"
)

var fencedBlockRe = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// UnwrapFenced extracts the payload from a markdown code fence in a
// model completion. The first ```json or bare ``` block anywhere in the
// string wins, so surrounding prose never hides the payload. An
// unterminated leading fence is stripped in place; anything else is
// returned trimmed and untouched.
func UnwrapFenced(s string) string {
	if m := fencedBlockRe.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}

	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		// Drop the language tag line ("json", "JSON", or empty).
		head := strings.TrimSpace(trimmed[:nl])
		if head == "" || strings.EqualFold(head, "json") {
			trimmed = trimmed[nl+1:]
		}
	}
	return strings.TrimSpace(trimmed)
}

// FallbackAnalysis is the typed result substituted when a completion
// cannot be parsed. Collections are empty, never nil, so downstream
// merge and rendering code does not special-case the failure.
func FallbackAnalysis() *Analysis {
	return &Analysis{
		Summary:      "Failed to parse AI response.",
		Category:     "Error",
		Urgency:      "Low",
		Timeline:     []TimelineEntry{},
		ActionItems:  []string{},
		ActionsTaken: []string{},
	}
}

// ParseAnalysis decodes a model completion into an Analysis. It never
// fails: a completion that is not valid JSON after fence unwrapping
// yields the fallback result instead.
func ParseAnalysis(completion string) *Analysis {
	var out Analysis
	if err := json.Unmarshal([]byte(UnwrapFenced(completion)), &out); err != nil {
		return FallbackAnalysis()
	}
	if out.Timeline == nil {
		out.Timeline = []TimelineEntry{}
	}
	if out.ActionItems == nil {
		out.ActionItems = []string{}
	}
	if out.ActionsTaken == nil {
		out.ActionsTaken = []string{}
	}
	return &out
}

// ParseItems decodes a checklist completion. Accepts either a bare array
// or an {"items": [...]} wrapper. Unlike ParseAnalysis this returns an
// error, because the reconciliation loop's contract on failure is to
// keep the prior list rather than substitute an empty one.
func ParseItems(completion string) ([]checklist.Proposed, error) {
	raw := UnwrapFenced(completion)

	var wrapped struct {
		Items []checklist.Proposed `json:"items"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil && wrapped.Items != nil {
		return wrapped.Items, nil
	}

	var items []checklist.Proposed
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}
