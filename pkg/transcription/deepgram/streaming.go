package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"incident-reporting-be/pkg/transcription"
)

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

// Provider implements transcription.Provider for Deepgram.
type Provider struct {
	cfg Config
}

func NewProvider(cfg Config) *Provider {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.deepgram.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &Provider{cfg: cfg}
}

func (p *Provider) StartStreaming(ctx context.Context, cfg transcription.StreamConfig) (transcription.Session, error) {
	if strings.TrimSpace(p.cfg.APIKey) == "" {
		return nil, errors.New("DEEPGRAM_API_KEY is not configured")
	}

	wsURL, err := buildListenURL(p.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+p.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}

	session := &streamingSession{
		conn:    conn,
		events:  make(chan transcription.Event, 64),
		audio:   make(chan []byte, 32),
		sendEnd: make(chan struct{}),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}

	session.wg.Add(2)
	go session.readLoop()
	go session.writeLoop()
	go func() {
		session.wg.Wait()
		close(session.events)
		close(session.done)
		_ = conn.Close()
	}()

	go func() {
		<-ctx.Done()
		_ = session.Close()
	}()

	return session, nil
}

type streamingSession struct {
	conn *websocket.Conn

	events chan transcription.Event

	// audio is never closed: a concurrent SendAudio must not be able to
	// hit a closed channel. sendEnd signals end of input instead.
	audio   chan []byte
	sendEnd chan struct{}
	closing chan struct{}
	done    chan struct{}

	wg sync.WaitGroup

	errMu sync.Mutex
	err   error

	closeSendOnce sync.Once
	closeOnce     sync.Once
}

func (s *streamingSession) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	copied := append([]byte(nil), chunk...)
	select {
	case <-s.sendEnd:
		return errors.New("audio stream is already closed")
	default:
	}

	select {
	case s.audio <- copied:
		return nil
	case <-s.sendEnd:
		return errors.New("audio stream is already closed")
	case <-s.done:
		if err := s.waitErr(); err != nil {
			return err
		}
		return errors.New("session closed")
	}
}

func (s *streamingSession) CloseSend() error {
	s.closeSendOnce.Do(func() {
		close(s.sendEnd)
	})
	return nil
}

func (s *streamingSession) Events() <-chan transcription.Event {
	return s.events
}

func (s *streamingSession) Wait() error {
	<-s.done
	return s.waitErr()
}

func (s *streamingSession) Close() error {
	s.closeOnce.Do(func() {
		_ = s.CloseSend()
		close(s.closing)
		_ = s.conn.Close()
	})
	<-s.done
	return s.waitErr()
}

func (s *streamingSession) waitErr() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *streamingSession) setErr(err error) {
	if err == nil {
		return
	}
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	) {
		return
	}

	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *streamingSession) writeLoop() {
	defer s.wg.Done()

	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
				s.setErr(fmt.Errorf("failed to send audio: %w", err))
				return
			}
		case <-s.sendEnd:
			// Flush whatever is still buffered before closing the stream.
			for {
				select {
				case chunk := <-s.audio:
					if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
						s.setErr(fmt.Errorf("failed to send audio: %w", err))
						return
					}
				default:
					if err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
						s.setErr(fmt.Errorf("failed to close stream: %w", err))
					}
					return
				}
			}
		}
	}
}

func (s *streamingSession) readLoop() {
	defer s.wg.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.setErr(fmt.Errorf("failed to read provider event: %w", err))
			return
		}

		var response deepgramResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			continue
		}

		if strings.EqualFold(response.Type, "UtteranceEnd") {
			s.emit(transcription.Event{UtteranceEnd: true})
			continue
		}

		if strings.EqualFold(response.Type, "Error") {
			message := strings.TrimSpace(response.Message)
			if message == "" {
				message = "deepgram returned an unknown error"
			}
			s.setErr(errors.New(message))
			return
		}

		transcript, speaker := extractResult(response)
		if transcript == "" {
			continue
		}

		s.emit(transcription.Event{
			Speaker: speaker,
			Text:    transcript,
			IsFinal: response.IsFinal || response.SpeechFinal,
		})
	}
}

// emit blocks instead of dropping: the segment log's correction rule
// assumes a lossless ordered stream, so backpressure pauses the read
// loop rather than losing a final. closing unblocks it during teardown
// once the consumer may be gone.
func (s *streamingSession) emit(event transcription.Event) {
	select {
	case s.events <- event:
	case <-s.closing:
	}
}

type deepgramAlternative struct {
	Transcript string `json:"transcript"`
	Words      []struct {
		Speaker *int `json:"speaker"`
	} `json:"words"`
}

type deepgramResponse struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []deepgramAlternative `json:"alternatives"`
	} `json:"channel"`
}

// extractResult pulls the transcript text and the diarized speaker id of
// the first word. Results without word-level speaker info map to speaker 0.
func extractResult(response deepgramResponse) (string, int) {
	if len(response.Channel.Alternatives) == 0 {
		return "", 0
	}
	alt := response.Channel.Alternatives[0]

	speaker := 0
	if len(alt.Words) > 0 && alt.Words[0].Speaker != nil {
		speaker = *alt.Words[0].Speaker
	}
	return strings.TrimSpace(alt.Transcript), speaker
}

func buildListenURL(providerCfg Config, streamCfg transcription.StreamConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = "https://api.deepgram.com/v1"
	}

	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	base = strings.TrimRight(base, "/")

	listenURL, err := url.Parse(base + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	if streamCfg.Encoding == "" {
		streamCfg.Encoding = "linear16"
	}
	if streamCfg.SampleRate <= 0 {
		streamCfg.SampleRate = 16000
	}
	if streamCfg.Channels <= 0 {
		streamCfg.Channels = 1
	}

	query := listenURL.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", streamCfg.Encoding)
	query.Set("sample_rate", fmt.Sprintf("%d", streamCfg.SampleRate))
	query.Set("channels", fmt.Sprintf("%d", streamCfg.Channels))
	query.Set("interim_results", fmt.Sprintf("%t", streamCfg.InterimResults))
	query.Set("smart_format", fmt.Sprintf("%t", providerCfg.SmartFormat))
	if streamCfg.Diarize {
		query.Set("diarize", "true")
	}
	if streamCfg.UtteranceEndMS > 0 {
		query.Set("utterance_end_ms", fmt.Sprintf("%d", streamCfg.UtteranceEndMS))
		query.Set("vad_events", "true")
	}
	if providerCfg.Language != "" {
		query.Set("language", providerCfg.Language)
	}
	listenURL.RawQuery = query.Encode()
	return listenURL.String(), nil
}
