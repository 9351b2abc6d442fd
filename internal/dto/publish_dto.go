package dto

// TranscriptUpdatedMessage is the internal bus payload emitted whenever
// a session's visible transcript changes.
type TranscriptUpdatedMessage struct {
	SessionID string `json:"session_id"`
}
