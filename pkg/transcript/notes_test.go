package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSentenceBoundedNote(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract("make a note the patient is stable. continue assessment")

	assert.Equal(t, []string{"the patient is stable."}, notes)
}

func TestExtractTerminatorBoundedNote(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract("note to self check hydrant pressure on arrival end note proceeding east")

	assert.Equal(t, []string{"check hydrant pressure on arrival"}, notes)
}

func TestExtractMultipleNotes(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract(
		"take a note bystander reports two occupants end note clearing the second floor " +
			"important note utility shutoff is in the basement.")

	assert.Equal(t, []string{
		"bystander reports two occupants",
		"utility shutoff is in the basement.",
	}, notes)
}

func TestExtractNextTriggerEndsSpan(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract("make a note airway is clear make a note pulse is weak.")

	assert.Equal(t, []string{"airway is clear", "pulse is weak."}, notes)
}

func TestExtractPauseMarkerEndsSpanAndIsExcluded(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract("make a note patient refused transport [[PAUSE 09:12:00]] resuming vitals")

	assert.Equal(t, []string{"patient refused transport"}, notes)
}

func TestExtractCaseInsensitiveTrigger(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract("MAKE A NOTE Roof access is blocked.")

	assert.Equal(t, []string{"Roof access is blocked."}, notes)
}

func TestExtractLongestTriggerWinsOnOverlap(t *testing.T) {
	extractor := NewPhraseExtractor()

	// "add note to self" embeds "note to self"; the longer trigger must win
	// so the captured span does not start with "to self".
	notes := extractor.Extract("add note to self restock the trauma bag end note")

	assert.Equal(t, []string{"restock the trauma bag"}, notes)
}

func TestExtractDropsShortAndDuplicateNotes(t *testing.T) {
	extractor := NewPhraseExtractor()

	notes := extractor.Extract("make a note ok. make a note check oxygen. make a note check oxygen.")

	assert.Equal(t, []string{"check oxygen."}, notes)
}

func TestExtractNoTriggerNoNotes(t *testing.T) {
	extractor := NewPhraseExtractor()

	assert.Empty(t, extractor.Extract("engine two on scene nothing showing"))
	assert.Empty(t, extractor.Extract(""))
}
