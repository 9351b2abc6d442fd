package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incident-reporting-be/pkg/checklist"
)

func TestApplyReconciledReplaysMidCycleToggle(t *testing.T) {
	sess := NewRecordingSession(uuid.New(), "EMS", "")
	id := checklist.ItemID("check airway")
	sess.SetItems([]checklist.Item{{ID: id, Text: "check airway"}})

	// The reconcile cycle snapshots the list, then the responder taps
	// the item while the oracle call is in flight.
	snapshot := sess.Items()
	item, ok := sess.ToggleItem(id)
	require.True(t, ok)
	require.True(t, item.IsCompleted)

	merged := checklist.Reconcile(snapshot, []checklist.Proposed{
		{Text: "check airway", IsCompleted: false},
	})
	out := sess.ApplyReconciled(merged)

	require.Len(t, out, 1)
	assert.True(t, out[0].IsCompleted)
	assert.True(t, sess.Items()[0].IsCompleted)
}

func TestApplyReconciledClearsLedgerAfterReplay(t *testing.T) {
	sess := NewRecordingSession(uuid.New(), "FIRE", "")
	id := checklist.ItemID("establish water supply")
	sess.SetItems([]checklist.Item{{ID: id, Text: "establish water supply"}})
	sess.ToggleItem(id)

	first := sess.ApplyReconciled([]checklist.Item{{ID: id, Text: "establish water supply"}})
	require.True(t, first[0].IsCompleted)

	// Replayed once; the next cycle takes the oracle's state as-is.
	second := sess.ApplyReconciled([]checklist.Item{{ID: id, Text: "establish water supply"}})
	assert.False(t, second[0].IsCompleted)
}

func TestVisibleTranscriptPrependsRecoveredText(t *testing.T) {
	sess := NewRecordingSession(uuid.New(), "EMS", "prior narration")
	sess.Consent.Toggle(0)
	sess.Segments.Append(0, "patient stabilized", true)

	assert.Equal(t, "prior narration patient stabilized", sess.VisibleTranscript())
}
