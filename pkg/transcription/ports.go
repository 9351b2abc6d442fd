package transcription

import "context"

// Event is one ordered result from the streaming transcription source.
// UtteranceEnd events carry no text; they only signal that the speaker
// went quiet and the silence watchdog may arm.
type Event struct {
	Speaker      int
	Text         string
	IsFinal      bool
	UtteranceEnd bool
}

// StreamConfig describes provider-agnostic streaming settings for one
// recording.
type StreamConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
	Diarize        bool
	UtteranceEndMS int
}

// Session is an active provider streaming session. Audio sent before the
// provider socket is ready is buffered and flushed in order.
type Session interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan Event
	Wait() error
	Close() error
}

// Provider starts streaming transcription sessions.
type Provider interface {
	StartStreaming(ctx context.Context, cfg StreamConfig) (Session, error)
}
