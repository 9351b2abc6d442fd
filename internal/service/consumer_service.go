package service

import (
	"context"
	"encoding/json"
	"log"

	"incident-reporting-be/internal/dto"
	"incident-reporting-be/internal/model"
	"incident-reporting-be/internal/repository/memory"
	"incident-reporting-be/pkg/transcript"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService re-extracts field notes whenever a session's visible
// transcript changes. Extraction runs off the hot ingestion path so a
// long transcript never delays the next audio result.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sessions  *memory.SessionRepository
	extractor transcript.NoteExtractor
	delivery  LiveDelivery
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sessions *memory.SessionRepository,
	extractor transcript.NoteExtractor,
	delivery LiveDelivery,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		sessions:  sessions,
		extractor: extractor,
		delivery:  delivery,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TranscriptUpdatedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal transcript update: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	sess, found := cs.sessions.Get(payload.SessionID)
	if !found {
		// Session already finalized or discarded. Ack.
		msg.Ack()
		return
	}

	notes := cs.extractor.Extract(sess.VisibleTranscript())
	sess.SetNotes(notes)

	if userId, err := uuid.Parse(sess.UserID); err == nil {
		cs.delivery.Send(userId, "live_update", model.LiveUpdate{
			SessionID:         sess.ID,
			Transcript:        sess.VisibleTranscript(),
			Speakers:          sess.Segments.Speakers(),
			ConsentedSpeakers: sess.Consent.IDs(),
			Items:             sess.Items(),
			Notes:             notes,
		})
	}

	msg.Ack()
}
