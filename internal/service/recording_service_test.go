package service

import (
	"context"
	"testing"
	"time"

	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/repository/memory"
	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/oracle"
	"incident-reporting-be/pkg/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFinalReportMergesTimelinesLexically(t *testing.T) {
	s := &recordingService{}
	sess := store.NewRecordingSession(uuid.New(), constant.ModeEMS, "")
	sess.AddManualEvent(oracle.TimelineEntry{Time: "09:05", Event: "Administered oxygen"})

	analysis := &oracle.Analysis{
		Summary:  "test",
		Category: "Medical",
		Urgency:  "Low",
		Timeline: []oracle.TimelineEntry{
			{Time: "09:10", Event: "Transport initiated"},
			{Time: "09:00", Event: "Arrived on scene"},
		},
	}

	report, err := s.buildFinalReport(sess, "some transcript", "", analysis)
	require.NoError(t, err)

	require.Len(t, report.Timeline, 3)
	assert.Equal(t, "09:00", report.Timeline[0].Time)
	assert.Equal(t, "09:05", report.Timeline[1].Time)
	assert.Equal(t, "Administered oxygen", report.Timeline[1].Event)
	assert.Equal(t, "09:10", report.Timeline[2].Time)
}

func TestBuildFinalReportPartitionsChecklist(t *testing.T) {
	s := &recordingService{}
	sess := store.NewRecordingSession(uuid.New(), constant.ModeFire, "")
	sess.SetItems([]checklist.Item{
		{ID: "ci-1", Text: "Secure utilities", IsCompleted: true},
		{ID: "ci-2", Text: "Complete primary search", IsCompleted: false},
	})

	analysis := &oracle.Analysis{
		ActionItems:  []string{"File incident report", "Complete primary search"},
		ActionsTaken: []string{"Established water supply"},
	}

	report, err := s.buildFinalReport(sess, "transcript", "", analysis)
	require.NoError(t, err)

	// Pending item unioned with model suggestions, exact repeats dropped.
	assert.Equal(t, []string{"Complete primary search", "File incident report"}, report.ActionItems)
	// Model's actions first, then completed checklist items.
	assert.Equal(t, []string{"Established water supply", "Secure utilities"}, report.ActionsTaken)
	assert.Equal(t, constant.StatusCompleted, report.Status)
}

func TestBuildFinalReportKeepsSessionIdAsReportId(t *testing.T) {
	s := &recordingService{}
	sess := store.NewRecordingSession(uuid.New(), constant.ModeEMS, "")

	report, err := s.buildFinalReport(sess, "transcript", "neris_v1", &oracle.Analysis{})
	require.NoError(t, err)
	assert.Equal(t, sess.ID, report.Id.String())
	assert.Equal(t, sess.UserID, report.UserId.String())
	assert.Equal(t, "neris_v1", report.TemplateUsed)
}

func TestUnionDedup(t *testing.T) {
	out := unionDedup(
		[]string{"check vitals", "call hospital"},
		[]string{"call hospital", "restock supplies", "check vitals"},
	)
	assert.Equal(t, []string{"check vitals", "call hospital", "restock supplies"}, out)

	assert.Empty(t, unionDedup(nil, nil))
}

func TestAutosaveRefreshesSessionBeforeConsent(t *testing.T) {
	repo := memory.NewSessionRepository()
	s := &recordingService{sessions: repo}
	sess := store.NewRecordingSession(uuid.New(), constant.ModeEMS, "")

	// No consented speech yet: the cache entry must still be refreshed so
	// the session does not age out, and no snapshot may be persisted (a
	// nil unit-of-work factory would panic if autosave tried).
	s.autosave(context.Background(), sess)

	_, found := repo.Get(sess.ID)
	assert.True(t, found)
}

func TestAutosaveSkipsMarkerOnlyTranscript(t *testing.T) {
	repo := memory.NewSessionRepository()
	s := &recordingService{sessions: repo}
	sess := store.NewRecordingSession(uuid.New(), constant.ModeEMS, "[[PAUSE 09:00:00]]")

	s.autosave(context.Background(), sess)

	_, found := repo.Get(sess.ID)
	assert.True(t, found)
}

func TestSilenceTimeoutPerMode(t *testing.T) {
	s := &recordingService{cfg: RecordingConfig{
		SilenceTimeoutEMS:  5 * time.Second,
		SilenceTimeoutFire: 3 * time.Second,
	}}

	assert.Equal(t, 5*time.Second, s.silenceTimeout(constant.ModeEMS))
	assert.Equal(t, 3*time.Second, s.silenceTimeout(constant.ModeFire))
}

func TestToReportResponseTimestampFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	r := &entity.Report{
		Id:        uuid.New(),
		Mode:      constant.ModeEMS,
		Status:    constant.StatusCompleted,
		CreatedAt: created,
	}
	assert.Equal(t, created, toReportResponse(r).Timestamp)

	r.UpdatedAt = &updated
	assert.Equal(t, updated, toReportResponse(r).Timestamp)
}
