package service

import (
	"context"
	"errors"
	"strings"

	"math-agent-be/internal/dto"
	"math-agent-be/internal/pkg/logger"
	"math-agent-be/internal/repository/contract"
	"math-agent-be/pkg/events"
	"math-agent-be/pkg/metrics"
	"math-agent-be/pkg/rag/ragerr"
	"math-agent-be/pkg/rag/state"

	"github.com/google/uuid"
)

const feedbackReceivedMessage = "Feedback received and answer updated."

type IAgentService interface {
	Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error)
	Feedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
	LastConversation(ctx context.Context) (*dto.ConversationResponse, error)
}

type Guardrail interface {
	Precheck(ctx context.Context, question string) (bool, error)
	Postcheck(answer string) string
}

type Pipeline interface {
	Execute(ctx context.Context, question string) *state.ConversationState
}

type Refiner interface {
	Refine(ctx context.Context, question, priorAnswer, feedback string) (string, error)
}

type agentService struct {
	guardrail        Guardrail
	pipeline         Pipeline
	refiner          Refiner
	conversationRepo contract.ConversationRepository
	eventPublisher   events.Publisher
	metrics          *metrics.Recorder
	logger           logger.ILogger
}

func NewAgentService(
	guardrail Guardrail,
	pipeline Pipeline,
	refiner Refiner,
	conversationRepo contract.ConversationRepository,
	eventPublisher events.Publisher,
	recorder *metrics.Recorder,
	logger logger.ILogger,
) IAgentService {
	if eventPublisher == nil {
		eventPublisher = events.NoopPublisher{}
	}
	return &agentService{
		guardrail:        guardrail,
		pipeline:         pipeline,
		refiner:          refiner,
		conversationRepo: conversationRepo,
		eventPublisher:   eventPublisher,
		metrics:          recorder,
		logger:           logger,
	}
}

func (s *agentService) Query(ctx context.Context, req *dto.QueryRequest) (*dto.QueryResponse, error) {
	question := strings.TrimSpace(req.Question)

	// 1. Input guardrail
	inScope, err := s.guardrail.Precheck(ctx, question)
	if err != nil {
		return nil, err
	}
	if !inScope {
		return nil, ragerr.ErrOutOfScope
	}

	// 2. Pipeline
	final := s.pipeline.Execute(ctx, question)
	if final.Failed() {
		s.publish(ctx, events.New(events.TypeQueryFailed, map[string]interface{}{
			"question": question,
			"error":    final.Error,
		}))
		return nil, &ragerr.PipelineFailure{Message: final.Error}
	}

	// 3. Output guardrail
	answer := s.guardrail.Postcheck(final.Answer)

	// 4. Remember for feedback
	conversation := &contract.Conversation{
		ID:       uuid.New(),
		Question: question,
		Answer:   answer,
		Source:   final.Source,
	}
	if err := s.conversationRepo.Save(ctx, conversation); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.TypeQueryAnswered, map[string]interface{}{
		"conversation_id": conversation.ID.String(),
		"question":        question,
		"source":          final.Source.String(),
	}))

	return &dto.QueryResponse{
		Answer:         answer,
		Source:         final.Source,
		FeedbackNeeded: true,
	}, nil
}

func (s *agentService) Feedback(ctx context.Context, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	conversation, err := s.conversationRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		s.metrics.RecordFeedback("rejected")
		return nil, ragerr.ErrNoConversation
	}
	if strings.TrimSpace(req.Feedback) == "" {
		s.metrics.RecordFeedback("rejected")
		return nil, ragerr.ErrEmptyFeedback
	}

	refined, err := s.refiner.Refine(ctx, conversation.Question, conversation.Answer, req.Feedback)
	if err != nil {
		s.metrics.RecordFeedback("error")
		return nil, err
	}
	refined = s.guardrail.Postcheck(refined)

	updated, err := s.conversationRepo.UpdateAnswer(ctx, conversation.ID, refined)
	if err != nil {
		if errors.Is(err, ragerr.ErrConversationChanged) {
			s.metrics.RecordFeedback("conflict")
		}
		return nil, err
	}
	s.metrics.RecordFeedback("ok")

	s.publish(ctx, events.New(events.TypeAnswerRefined, map[string]interface{}{
		"conversation_id": updated.ID.String(),
		"feedback":        req.Feedback,
	}))

	return &dto.FeedbackResponse{
		Message:       feedbackReceivedMessage,
		RefinedAnswer: refined,
	}, nil
}

func (s *agentService) LastConversation(ctx context.Context) (*dto.ConversationResponse, error) {
	conversation, err := s.conversationRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, nil
	}
	return &dto.ConversationResponse{
		Id:        conversation.ID,
		Question:  conversation.Question,
		Answer:    conversation.Answer,
		Source:    conversation.Source,
		UpdatedAt: conversation.UpdatedAt,
	}, nil
}

// publish never fails the request; the bus is best effort.
func (s *agentService) publish(ctx context.Context, event events.Event) {
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("AGENT-SERVICE", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}
