package deepgram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incident-reporting-be/pkg/transcription"
)

func TestNewProviderDefaults(t *testing.T) {
	p := NewProvider(Config{})

	assert.Equal(t, "https://api.deepgram.com/v1", p.cfg.APIBaseURL)
	assert.Equal(t, "nova-2", p.cfg.Model)
}

func TestStartStreamingRequiresAPIKey(t *testing.T) {
	p := NewProvider(Config{APIKey: "   "})

	_, err := p.StartStreaming(context.Background(), transcription.StreamConfig{})
	assert.Error(t, err)
}

func TestBuildListenURLDefaults(t *testing.T) {
	url, err := buildListenURL(Config{APIBaseURL: "https://api.deepgram.com/v1", Model: "nova-2"}, transcription.StreamConfig{})
	require.NoError(t, err)

	assert.Contains(t, url, "wss://api.deepgram.com/v1/listen")
	assert.Contains(t, url, "encoding=linear16")
	assert.Contains(t, url, "sample_rate=16000")
	assert.Contains(t, url, "channels=1")
	assert.NotContains(t, url, "diarize")
	assert.NotContains(t, url, "utterance_end_ms")
}

func TestBuildListenURLDiarizationAndUtteranceEnd(t *testing.T) {
	url, err := buildListenURL(
		Config{APIBaseURL: "http://localhost:8080/v1", Model: "m", Language: "en-US", SmartFormat: true},
		transcription.StreamConfig{
			Encoding:       "linear16",
			SampleRate:     8000,
			Channels:       2,
			InterimResults: true,
			Diarize:        true,
			UtteranceEndMS: 1000,
		},
	)
	require.NoError(t, err)

	assert.Contains(t, url, "ws://localhost:8080/v1/listen")
	assert.Contains(t, url, "diarize=true")
	assert.Contains(t, url, "utterance_end_ms=1000")
	assert.Contains(t, url, "vad_events=true")
	assert.Contains(t, url, "language=en-US")
	assert.Contains(t, url, "smart_format=true")
}

func TestBuildListenURLInvalidBase(t *testing.T) {
	_, err := buildListenURL(Config{APIBaseURL: ":// bad"}, transcription.StreamConfig{})
	assert.Error(t, err)
}

func TestExtractResultSpeakerFromFirstWord(t *testing.T) {
	speaker := 1
	var r deepgramResponse
	r.Channel.Alternatives = []deepgramAlternative{{
		Transcript: " patient is breathing ",
		Words: []struct {
			Speaker *int `json:"speaker"`
		}{{Speaker: &speaker}},
	}}

	text, got := extractResult(r)
	assert.Equal(t, "patient is breathing", text)
	assert.Equal(t, 1, got)
}

func TestExtractResultDefaultsSpeakerZero(t *testing.T) {
	var r deepgramResponse
	r.Channel.Alternatives = []deepgramAlternative{{Transcript: "no words array"}}

	text, speaker := extractResult(r)
	assert.Equal(t, "no words array", text)
	assert.Equal(t, 0, speaker)

	text, _ = extractResult(deepgramResponse{})
	assert.Equal(t, "", text)
}

func TestSendAudioAfterCloseSendFails(t *testing.T) {
	s := &streamingSession{
		audio:   make(chan []byte, 1),
		sendEnd: make(chan struct{}),
		done:    make(chan struct{}),
	}
	require.NoError(t, s.CloseSend())
	assert.Error(t, s.SendAudio([]byte("x")))
}

func TestCloseSendIsIdempotent(t *testing.T) {
	s := &streamingSession{
		audio:   make(chan []byte, 1),
		sendEnd: make(chan struct{}),
	}
	assert.NoError(t, s.CloseSend())
	assert.NoError(t, s.CloseSend())
}

func TestSendAudioDuringCloseSendDoesNotPanic(t *testing.T) {
	s := &streamingSession{
		audio:   make(chan []byte, 4),
		sendEnd: make(chan struct{}),
		done:    make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if err := s.SendAudio([]byte{byte(i)}); err != nil {
				return
			}
		}
	}()

	assert.NoError(t, s.CloseSend())
	wg.Wait()

	assert.Error(t, s.SendAudio([]byte("late")))
}

func TestEmitBlocksUntilConsumerDrains(t *testing.T) {
	s := &streamingSession{
		events:  make(chan transcription.Event, 1),
		closing: make(chan struct{}),
	}
	s.emit(transcription.Event{Text: "first", IsFinal: true})

	delivered := make(chan struct{})
	go func() {
		s.emit(transcription.Event{Text: "second", IsFinal: true})
		close(delivered)
	}()

	select {
	case <-delivered:
		t.Fatal("emit must wait for the consumer, not drop")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, "first", (<-s.events).Text)
	assert.Equal(t, "second", (<-s.events).Text)
	<-delivered
}

func TestEmitUnblocksOnTeardown(t *testing.T) {
	s := &streamingSession{
		events:  make(chan transcription.Event, 1),
		closing: make(chan struct{}),
	}
	s.emit(transcription.Event{Text: "buffered"})

	close(s.closing)
	s.emit(transcription.Event{Text: "after teardown"})

	assert.Len(t, s.events, 1)
}

func TestSetErrIgnoresNormalClosure(t *testing.T) {
	s := &streamingSession{}

	s.setErr(&websocket.CloseError{Code: websocket.CloseNormalClosure, Text: "closed"})
	assert.NoError(t, s.waitErr())

	s.setErr(errors.New("boom"))
	require.Error(t, s.waitErr())
	assert.Equal(t, "boom", s.waitErr().Error())

	s.setErr(errors.New("second"))
	assert.Equal(t, "boom", s.waitErr().Error())
}
