package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrapFenced(t *testing.T) {
	assert.Equal(t, `{"a":1}`, UnwrapFenced("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, UnwrapFenced("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, UnwrapFenced("  {\"a\":1}  "))
	assert.Equal(t, `{"a":1}`, UnwrapFenced("```JSON\n{\"a\":1}\n```"))
}

func TestUnwrapFencedFindsBlockInsideProse(t *testing.T) {
	assert.Equal(t, `{"a":1}`,
		UnwrapFenced("Here is the report:\n```json\n{\"a\":1}\n```\nLet me know if you need changes."))
	assert.Equal(t, `{"a":1}`,
		UnwrapFenced("Sure!\n```\n{\"a\":1}\n```"))
	// Unterminated leading fence still degrades to a plain strip.
	assert.Equal(t, `{"a":1}`, UnwrapFenced("```json\n{\"a\":1}"))
}

func TestParseAnalysisIgnoresSurroundingProse(t *testing.T) {
	completion := "Here is the structured report you asked for:\n" +
		"```json\n" +
		`{"summary":"cardiac arrest, ROSC achieved","category":"Medical","urgency":"High"}` +
		"\n```\n" +
		"Anything else?"

	a := ParseAnalysis(completion)

	assert.Equal(t, "cardiac arrest, ROSC achieved", a.Summary)
	assert.Equal(t, "Medical", a.Category)
	assert.Equal(t, "High", a.Urgency)
}

func TestParseAnalysisUnwrapsFence(t *testing.T) {
	completion := "```json\n" +
		`{"summary":"structure fire, single story","category":"Fire","urgency":"High",` +
		`"timeline":[{"time":"09:00","event":"arrival"}],"action_items":["overhaul"],` +
		`"hazards":["downed power line"]}` +
		"\n```"

	a := ParseAnalysis(completion)

	assert.Equal(t, "structure fire, single story", a.Summary)
	assert.Equal(t, "High", a.Urgency)
	require.Len(t, a.Timeline, 1)
	assert.Equal(t, "09:00", a.Timeline[0].Time)
	assert.Equal(t, []string{"overhaul"}, a.ActionItems)
	assert.Equal(t, []string{}, a.ActionsTaken)
}

func TestParseAnalysisFallbackOnGarbage(t *testing.T) {
	a := ParseAnalysis("I could not produce JSON, sorry.")

	assert.Equal(t, "Failed to parse AI response.", a.Summary)
	assert.Equal(t, "Error", a.Category)
	assert.Equal(t, "Low", a.Urgency)
	assert.NotNil(t, a.Timeline)
	assert.Empty(t, a.Timeline)
	assert.NotNil(t, a.ActionItems)
	assert.Empty(t, a.ActionItems)
}

func TestParseAnalysisDefaultsNilCollections(t *testing.T) {
	a := ParseAnalysis(`{"summary":"ok","category":"EMS","urgency":"Low"}`)

	assert.NotNil(t, a.Timeline)
	assert.NotNil(t, a.ActionItems)
	assert.NotNil(t, a.ActionsTaken)
}

func TestParseItemsBareArrayAndWrapper(t *testing.T) {
	bare, err := ParseItems(`[{"text":"check vitals","isCompleted":false}]`)
	require.NoError(t, err)
	require.Len(t, bare, 1)
	assert.Equal(t, "check vitals", bare[0].Text)

	wrapped, err := ParseItems("```json\n" + `{"items":[{"text":"check vitals","isCompleted":true}]}` + "\n```")
	require.NoError(t, err)
	require.Len(t, wrapped, 1)
	assert.True(t, wrapped[0].IsCompleted)
}

func TestParseItemsErrorsOnGarbage(t *testing.T) {
	_, err := ParseItems("not json")
	assert.Error(t, err)
}
