package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"incident-reporting-be/internal/constant"
	"incident-reporting-be/internal/dto"
	"incident-reporting-be/internal/entity"
	"incident-reporting-be/internal/model"
	"incident-reporting-be/internal/pkg/logger"
	"incident-reporting-be/internal/repository/memory"
	"incident-reporting-be/internal/repository/specification"
	"incident-reporting-be/internal/repository/unitofwork"
	"incident-reporting-be/pkg/checklist"
	"incident-reporting-be/pkg/events"
	"incident-reporting-be/pkg/oracle"
	"incident-reporting-be/pkg/store"
	"incident-reporting-be/pkg/transcript"
	"incident-reporting-be/pkg/transcription"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound   = errors.New("recording session not found")
	ErrNoSpeech          = errors.New("no speech detected")
	ErrNoConsentedSpeech = errors.New("no consented speech detected")
)

// LiveDelivery pushes real-time updates to a user's connected devices.
// Implemented by the WebSocket Hub.
type LiveDelivery interface {
	Send(userID uuid.UUID, messageType string, data any)
}

// EventPublisher publishes domain events to the bus. Implemented by the
// NATS publisher; nil-able so the service degrades when the bus is down.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// RecordingConfig carries the timing knobs of a live session.
type RecordingConfig struct {
	ReconcileInterval  time.Duration
	AutosaveInterval   time.Duration
	SilenceTimeoutEMS  time.Duration
	SilenceTimeoutFire time.Duration
	SampleRate         int
}

type IRecordingService interface {
	Start(ctx context.Context, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	Show(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionResponse, error)
	ToggleConsent(ctx context.Context, userId uuid.UUID, sessionId string, speakerId int) (*dto.ToggleConsentResponse, error)
	ToggleItem(ctx context.Context, userId uuid.UUID, sessionId string, itemId string) (*dto.ToggleItemResponse, error)
	AddManualEvent(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.ManualEventRequest) (*oracle.TimelineEntry, error)
	Stop(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.StopSessionRequest) (*dto.ReportResponse, error)
	Discard(ctx context.Context, userId uuid.UUID, sessionId string) error
	HandleAudio(sessionId string, chunk []byte) error
	Owns(sessionId string, userId uuid.UUID) bool
}

// liveRun holds the runtime handles of one active recording: the
// provider stream, the silence watchdog and the background loops.
type liveRun struct {
	stream   transcription.Session
	watchdog *transcript.SilenceWatchdog
	cancel   context.CancelFunc
	done     chan struct{}
	teardown sync.Once
}

type recordingService struct {
	cfg            RecordingConfig
	uowFactory     unitofwork.RepositoryFactory
	sessions       *memory.SessionRepository
	provider       transcription.Provider
	itemOracle     oracle.ItemOracle
	analysisOracle oracle.AnalysisOracle
	publisher      IPublisherService
	events         EventPublisher
	delivery       LiveDelivery
	logger         logger.ILogger

	mu   sync.Mutex
	runs map[string]*liveRun
}

func NewRecordingService(
	cfg RecordingConfig,
	uowFactory unitofwork.RepositoryFactory,
	sessions *memory.SessionRepository,
	provider transcription.Provider,
	itemOracle oracle.ItemOracle,
	analysisOracle oracle.AnalysisOracle,
	publisher IPublisherService,
	events EventPublisher,
	delivery LiveDelivery,
	log logger.ILogger,
) IRecordingService {
	return &recordingService{
		cfg:            cfg,
		uowFactory:     uowFactory,
		sessions:       sessions,
		provider:       provider,
		itemOracle:     itemOracle,
		analysisOracle: analysisOracle,
		publisher:      publisher,
		events:         events,
		delivery:       delivery,
		logger:         log,
		runs:           make(map[string]*liveRun),
	}
}

func (s *recordingService) Start(ctx context.Context, userId uuid.UUID, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	if !constant.ValidMode(req.Mode) {
		return nil, errors.New("unknown report mode")
	}

	recovered, err := s.recoverInProgress(ctx, userId, req.Mode)
	if err != nil {
		return nil, err
	}

	sess := store.NewRecordingSession(userId, req.Mode, "")
	resumed := recovered != nil
	if resumed {
		// Resume under the same report id so autosave keeps overwriting
		// the recovered record instead of forking a duplicate.
		sess.ID = recovered.Id.String()
		sess.Recovered = recovered.Transcript
		sess.SetItems(recovered.Checklist)
		sess.SetNotes(recovered.Notes)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	stream, err := s.provider.StartStreaming(runCtx, transcription.StreamConfig{
		SampleRate:     s.cfg.SampleRate,
		Channels:       1,
		Encoding:       "linear16",
		InterimResults: true,
		Diarize:        true,
		UtteranceEndMS: 1000,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("start transcription stream: %w", err)
	}

	run := &liveRun{
		stream: stream,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	run.watchdog = transcript.NewSilenceWatchdog(s.silenceTimeout(req.Mode), func(at time.Time) {
		if sess.Segments.InsertPauseMarker(at) {
			s.afterTranscriptChange(sess)
		}
	})

	s.mu.Lock()
	s.runs[sess.ID] = run
	s.mu.Unlock()
	s.sessions.Save(sess)

	go s.runLoops(runCtx, sess, run)

	s.logger.Info("Recording", "Session started", map[string]interface{}{
		"session_id": sess.ID,
		"mode":       sess.Mode,
		"resumed":    resumed,
	})
	return s.toSessionResponse(sess, resumed), nil
}

// recoverInProgress returns the canonical in-progress record for
// (user, mode), healing duplicates by keeping the most recently updated
// one and deleting the rest.
func (s *recordingService) recoverInProgress(ctx context.Context, userId uuid.UUID, mode string) (*entity.Report, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	reports, err := uow.ReportRepository().FindAll(ctx,
		specification.ReportOwnedByUser{UserID: userId},
		specification.ByMode{Mode: mode},
		specification.ByStatus{Status: constant.StatusInProgress},
		specification.OrderByUpdatedDesc{},
	)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}

	canonical := reports[0]
	if len(reports) > 1 {
		s.logger.Warn("Recording", "Consolidation conflict healed", map[string]interface{}{
			"mode":      mode,
			"kept":      canonical.Id,
			"discarded": len(reports) - 1,
		})
		for _, orphan := range reports[1:] {
			if err := uow.ReportRepository().HardDelete(ctx, orphan.Id); err != nil {
				s.logger.Error("Recording", "Failed to drop orphaned session record", map[string]interface{}{
					"report_id": orphan.Id,
					"error":     err.Error(),
				})
			}
		}
	}
	return canonical, nil
}

func (s *recordingService) runLoops(ctx context.Context, sess *store.RecordingSession, run *liveRun) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.eventLoop(ctx, sess, run)
	}()
	go func() {
		defer wg.Done()
		s.autosaveLoop(ctx, sess)
	}()
	go func() {
		defer wg.Done()
		s.reconcileLoop(ctx, sess)
	}()

	wg.Wait()
	close(run.done)
}

// eventLoop drains the provider stream single-threaded so the segment
// store's correction rule sees results in order.
func (s *recordingService) eventLoop(ctx context.Context, sess *store.RecordingSession, run *liveRun) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-run.stream.Events():
			if !ok {
				return
			}
			if ev.UtteranceEnd {
				run.watchdog.Arm()
				continue
			}
			run.watchdog.Reset()
			sess.Segments.Append(ev.Speaker, ev.Text, ev.IsFinal)
			s.afterTranscriptChange(sess)
		}
	}
}

func (s *recordingService) autosaveLoop(ctx context.Context, sess *store.RecordingSession) {
	ticker := time.NewTicker(s.cfg.AutosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.autosave(context.Background(), sess)
		}
	}
}

// reconcileLoop runs in its own goroutine with a blocking body, so a
// slow oracle call delays the next cycle instead of overlapping it.
func (s *recordingService) reconcileLoop(ctx context.Context, sess *store.RecordingSession) {
	ticker := time.NewTicker(s.cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reconcile(ctx, sess)
		}
	}
}

func (s *recordingService) reconcile(ctx context.Context, sess *store.RecordingSession) {
	consented := sess.VisibleTranscript()
	if strings.TrimSpace(transcript.StripPauseMarkers(consented)) == "" {
		// Nothing consented yet; skip the cycle, not an error.
		return
	}

	proposed, err := s.itemOracle.SuggestItems(ctx, sess.Mode, consented, sess.Items())
	if err != nil {
		// Keep the prior list untouched on any transport/parse failure.
		s.logger.Warn("Recording", "Checklist cycle failed, keeping prior items", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return
	}

	merged := checklist.Reconcile(sess.Items(), proposed)
	sess.ApplyReconciled(merged)
	s.pushLiveUpdate(sess)
}

func (s *recordingService) autosave(ctx context.Context, sess *store.RecordingSession) {
	// Refresh the in-memory TTL first: a live session waiting on consent
	// must not age out of the cache just because nothing is visible yet.
	s.sessions.Save(sess)

	visible := sess.VisibleTranscript()
	if strings.TrimSpace(transcript.StripPauseMarkers(visible)) == "" {
		return
	}

	report, err := s.partialReport(sess, visible)
	if err != nil {
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ReportRepository().Upsert(ctx, report); err != nil {
		s.logger.Error("Recording", "Autosave failed", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return
	}
}

func (s *recordingService) partialReport(sess *store.RecordingSession, visible string) (*entity.Report, error) {
	id, err := uuid.Parse(sess.ID)
	if err != nil {
		return nil, err
	}
	userId, err := uuid.Parse(sess.UserID)
	if err != nil {
		return nil, err
	}
	return &entity.Report{
		Id:           id,
		UserId:       userId,
		Mode:         sess.Mode,
		Status:       constant.StatusInProgress,
		Transcript:   visible,
		Timeline:     []oracle.TimelineEntry{},
		ActionItems:  []string{},
		ActionsTaken: []string{},
		Hazards:      []string{},
		Checklist:    sess.Items(),
		Notes:        sess.Notes(),
	}, nil
}

// afterTranscriptChange fans a transcript change out: the internal bus
// triggers note re-extraction, the hub pushes the new live state.
func (s *recordingService) afterTranscriptChange(sess *store.RecordingSession) {
	payload, _ := json.Marshal(dto.TranscriptUpdatedMessage{SessionID: sess.ID})
	if err := s.publisher.Publish(context.Background(), payload); err != nil {
		s.logger.Warn("Recording", "Failed to publish transcript update", map[string]interface{}{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
	}
	s.pushLiveUpdate(sess)
}

func (s *recordingService) pushLiveUpdate(sess *store.RecordingSession) {
	userId, err := uuid.Parse(sess.UserID)
	if err != nil {
		return
	}
	s.delivery.Send(userId, "live_update", model.LiveUpdate{
		SessionID:         sess.ID,
		Transcript:        sess.VisibleTranscript(),
		Speakers:          sess.Segments.Speakers(),
		ConsentedSpeakers: sess.Consent.IDs(),
		Items:             sess.Items(),
		Notes:             sess.Notes(),
	})
}

func (s *recordingService) Show(ctx context.Context, userId uuid.UUID, sessionId string) (*dto.SessionResponse, error) {
	sess, err := s.ownedSession(userId, sessionId)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(sess, false), nil
}

func (s *recordingService) ToggleConsent(ctx context.Context, userId uuid.UUID, sessionId string, speakerId int) (*dto.ToggleConsentResponse, error) {
	sess, err := s.ownedSession(userId, sessionId)
	if err != nil {
		return nil, err
	}

	consented := sess.Consent.Toggle(speakerId)
	// Consent changes the visible transcript, so downstream extraction
	// and live views must re-run.
	s.afterTranscriptChange(sess)

	return &dto.ToggleConsentResponse{
		SpeakerId:         speakerId,
		Consented:         consented,
		ConsentedSpeakers: sess.Consent.IDs(),
	}, nil
}

func (s *recordingService) ToggleItem(ctx context.Context, userId uuid.UUID, sessionId string, itemId string) (*dto.ToggleItemResponse, error) {
	sess, err := s.ownedSession(userId, sessionId)
	if err != nil {
		return nil, err
	}

	item, found := sess.ToggleItem(itemId)
	if !found {
		return nil, errors.New("checklist item not found")
	}

	res := &dto.ToggleItemResponse{Item: item}
	if item.IsCompleted {
		event := oracle.TimelineEntry{
			Time:  time.Now().Format("15:04"),
			Event: "Completed: " + item.Text,
		}
		sess.AddManualEvent(event)
		res.ManualEvent = event
	}

	s.pushLiveUpdate(sess)
	return res, nil
}

func (s *recordingService) AddManualEvent(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.ManualEventRequest) (*oracle.TimelineEntry, error) {
	sess, err := s.ownedSession(userId, sessionId)
	if err != nil {
		return nil, err
	}

	at := req.Time
	if at == "" {
		at = time.Now().Format("15:04")
	}
	event := oracle.TimelineEntry{
		Time:  at,
		Event: req.Description,
	}
	sess.AddManualEvent(event)
	return &event, nil
}

func (s *recordingService) Stop(ctx context.Context, userId uuid.UUID, sessionId string, req *dto.StopSessionRequest) (*dto.ReportResponse, error) {
	sess, err := s.ownedSession(userId, sessionId)
	if err != nil {
		return nil, err
	}

	// Tear the stream, silence timer and loops down before the final
	// transcript read, so finalization never observes a half-flushed
	// buffer.
	if run := s.takeRun(sessionId); run != nil {
		s.stopRun(run)
	}

	consented := sess.VisibleTranscript()
	if strings.TrimSpace(transcript.StripPauseMarkers(consented)) == "" {
		if sess.RawSpeech() != "" {
			return nil, ErrNoConsentedSpeech
		}
		return nil, ErrNoSpeech
	}

	analysis, err := s.analysisOracle.Analyze(ctx, oracle.AnalysisRequest{
		Transcript:   consented,
		Mode:         sess.Mode,
		Template:     req.Template,
		ManualEvents: sess.ManualEvents(),
	})
	if err != nil {
		// Finalize aborts entirely; the record stays in_progress.
		return nil, fmt.Errorf("analyze transcript: %w", err)
	}

	report, err := s.buildFinalReport(sess, consented, req.Template, analysis)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ReportRepository().Upsert(ctx, report); err != nil {
		return nil, err
	}

	if s.events != nil {
		event := events.NewReportCompleted(report.Id.String(), report.UserId.String(), report.Mode, report.Category)
		if err := s.events.Publish(ctx, event); err != nil {
			s.logger.Warn("Recording", "Failed to publish report_completed", map[string]interface{}{
				"report_id": report.Id,
				"error":     err.Error(),
			})
		}
	}

	s.sessions.Delete(sessionId)
	s.logger.Info("Recording", "Session finalized", map[string]interface{}{
		"report_id": report.Id,
		"mode":      report.Mode,
	})
	return toReportResponse(report), nil
}

func (s *recordingService) Discard(ctx context.Context, userId uuid.UUID, sessionId string) error {
	sess, err := s.ownedSession(userId, sessionId)
	if err != nil {
		return err
	}

	if run := s.takeRun(sessionId); run != nil {
		s.stopRun(run)
	}

	id, err := uuid.Parse(sess.ID)
	if err == nil {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.ReportRepository().HardDelete(ctx, id); err != nil {
			return err
		}
	}

	s.sessions.Delete(sessionId)
	s.logger.Info("Recording", "Session discarded", map[string]interface{}{"session_id": sessionId})
	return nil
}

func (s *recordingService) HandleAudio(sessionId string, chunk []byte) error {
	s.mu.Lock()
	run, ok := s.runs[sessionId]
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	return run.stream.SendAudio(chunk)
}

func (s *recordingService) Owns(sessionId string, userId uuid.UUID) bool {
	sess, found := s.sessions.Get(sessionId)
	return found && sess.UserID == userId.String()
}

func (s *recordingService) ownedSession(userId uuid.UUID, sessionId string) (*store.RecordingSession, error) {
	sess, found := s.sessions.Get(sessionId)
	if !found || sess.UserID != userId.String() {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *recordingService) takeRun(sessionId string) *liveRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[sessionId]
	if !ok {
		return nil
	}
	delete(s.runs, sessionId)
	return run
}

func (s *recordingService) stopRun(run *liveRun) {
	run.teardown.Do(func() {
		_ = run.stream.Close()
		run.watchdog.Stop()
		run.cancel()
	})
	<-run.done
}

func (s *recordingService) silenceTimeout(mode string) time.Duration {
	if mode == constant.ModeFire {
		return s.cfg.SilenceTimeoutFire
	}
	return s.cfg.SilenceTimeoutEMS
}

func (s *recordingService) buildFinalReport(sess *store.RecordingSession, consented, template string, analysis *oracle.Analysis) (*entity.Report, error) {
	id, err := uuid.Parse(sess.ID)
	if err != nil {
		return nil, err
	}
	userId, err := uuid.Parse(sess.UserID)
	if err != nil {
		return nil, err
	}

	// Lexical sort over zero-padded HH:MM[:SS] strings is the documented
	// ordering rule for merged timelines.
	timeline := make([]oracle.TimelineEntry, 0, len(analysis.Timeline)+len(sess.ManualEvents()))
	timeline = append(timeline, analysis.Timeline...)
	timeline = append(timeline, sess.ManualEvents()...)
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Time < timeline[j].Time
	})

	items := sess.Items()
	pending := make([]string, 0, len(items))
	completed := make([]string, 0, len(items))
	for _, item := range items {
		if item.IsCompleted {
			completed = append(completed, item.Text)
		} else {
			pending = append(pending, item.Text)
		}
	}

	return &entity.Report{
		Id:           id,
		UserId:       userId,
		Mode:         sess.Mode,
		Status:       constant.StatusCompleted,
		Category:     analysis.Category,
		Summary:      analysis.Summary,
		Urgency:      analysis.Urgency,
		TemplateUsed: template,
		Transcript:   consented,
		Analysis:     analysis,
		Timeline:     timeline,
		ActionItems:  unionDedup(pending, analysis.ActionItems),
		ActionsTaken: unionDedup(analysis.ActionsTaken, completed),
		Hazards:      analysis.Hazards,
		Checklist:    items,
		Notes:        sess.Notes(),
	}, nil
}

func (s *recordingService) toSessionResponse(sess *store.RecordingSession, resumed bool) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:                sess.ID,
		Mode:              sess.Mode,
		Status:            constant.StatusInProgress,
		Resumed:           resumed,
		Transcript:        sess.VisibleTranscript(),
		Speakers:          sess.Segments.Speakers(),
		ConsentedSpeakers: sess.Consent.IDs(),
		Items:             sess.Items(),
		Notes:             sess.Notes(),
		ManualEvents:      sess.ManualEvents(),
	}
}

// unionDedup concatenates two text lists, dropping exact repeats while
// preserving first-seen order.
func unionDedup(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, text := range list {
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, text)
		}
	}
	return out
}
