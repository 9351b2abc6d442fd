package constant

// Report modes.
const (
	ModeEMS  = "EMS"
	ModeFire = "FIRE"
)

// Report lifecycle statuses. A report flips to completed exactly once,
// at finalization.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Internal pub/sub topic for transcript change fan-out.
const TranscriptUpdatedTopic = "TRANSCRIPT_UPDATED"

// Event type published to the bus when a report is finalized.
const EventReportCompleted = "report_completed"

func ValidMode(mode string) bool {
	return mode == ModeEMS || mode == ModeFire
}
