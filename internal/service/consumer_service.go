package service

import (
	"context"
	"encoding/json"
	"sync"

	"math-agent-be/internal/dto"
	"math-agent-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

// maxIngestAttempts bounds redelivery of a message whose ingestion keeps failing.
const maxIngestAttempts = 3

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber       message.Subscriber
	topicName        string
	knowledgeService IKnowledgeService
	logger           logger.ILogger

	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	knowledgeService IKnowledgeService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:       subscriber,
		topicName:        topicName,
		knowledgeService: knowledgeService,
		logger:           logger,
		attempts:         make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
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
	var payload dto.PublishKnowledgeMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // invalid payloads are never retried
		return
	}

	stored, err := cs.knowledgeService.Ingest(ctx, []*dto.PublishKnowledgeMessage{&payload})
	if err != nil {
		attempt := cs.recordAttempt(msg.UUID)
		if attempt >= maxIngestAttempts {
			cs.logger.Error("CONSUMER", "Dropping passage after repeated failures", map[string]interface{}{
				"passage_id": payload.Id.String(),
				"attempts":   attempt,
				"error":      err.Error(),
			})
			cs.forget(msg.UUID)
			msg.Ack()
			return
		}
		cs.logger.Warn("CONSUMER", "Passage ingestion failed, will retry", map[string]interface{}{
			"passage_id": payload.Id.String(),
			"attempt":    attempt,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.forget(msg.UUID)
	cs.logger.Info("CONSUMER", "Passage ingested", map[string]interface{}{
		"passage_id": payload.Id.String(),
		"stored":     stored,
	})
	msg.Ack()
}

func (cs *consumerService) recordAttempt(id string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.attempts[id]++
	return cs.attempts[id]
}

func (cs *consumerService) forget(id string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	delete(cs.attempts, id)
}
