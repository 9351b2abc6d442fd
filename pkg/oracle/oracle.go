package oracle

import (
	"context"

	"incident-reporting-be/pkg/checklist"
)

// TimelineEntry is one timestamped event in a report timeline. Times are
// zero-padded "HH:MM" or "HH:MM:SS" strings so the lexical sort used at
// finalization orders them chronologically.
type TimelineEntry struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

// Analysis is the structured payload returned by the analysis model.
// The shape is mode-dependent: EMS responses fill the patient fields,
// fire responses fill scene/mva and NERIS fields. Unused fields stay
// empty rather than null so rendering never dereferences a missing
// collection.
type Analysis struct {
	Summary        string          `json:"summary"`
	Category       string          `json:"category"`
	Urgency        string          `json:"urgency"`
	ChiefComplaint string          `json:"chief_complaint,omitempty"`
	PatientInfo    map[string]any  `json:"patient_info,omitempty"`
	VitalsTimeline []TimelineEntry `json:"vitals_timeline,omitempty"`
	SceneInfo      map[string]any  `json:"scene_info,omitempty"`
	MVAInfo        map[string]any  `json:"mva_info,omitempty"`
	NERISData      map[string]any  `json:"neris_data,omitempty"`
	Timeline       []TimelineEntry `json:"timeline"`
	ActionItems    []string        `json:"action_items"`
	ActionsTaken   []string        `json:"actions_taken"`
	Hazards        []string        `json:"hazards,omitempty"`
}

// AnalysisRequest carries everything the analysis model needs for the
// single finalization call.
type AnalysisRequest struct {
	Transcript   string
	Mode         string
	Template     string
	ManualEvents []TimelineEntry
}

// AnalysisOracle produces the final structured report from a consented
// transcript.
type AnalysisOracle interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*Analysis, error)
}

// ItemOracle re-derives the live checklist from the running transcript.
// Implementations return an error on transport or parse failure; the
// caller keeps its current list in that case.
type ItemOracle interface {
	SuggestItems(ctx context.Context, mode string, transcript string, current []checklist.Item) ([]checklist.Proposed, error)
}
