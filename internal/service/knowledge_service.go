package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"math-agent-be/internal/dto"
	"math-agent-be/internal/entity"
	"math-agent-be/internal/pkg/logger"
	"math-agent-be/internal/repository/contract"
	"math-agent-be/internal/repository/specification"
	"math-agent-be/pkg/embedding"
	"math-agent-be/pkg/events"
	"math-agent-be/pkg/metrics"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/google/uuid"
)

type IKnowledgeService interface {
	// Enqueue hands a passage to the ingestion topic and returns its id immediately.
	Enqueue(ctx context.Context, req *dto.CreateKnowledgeRequest) (*dto.CreateKnowledgeResponse, error)
	// Ingest embeds the problems and stores the passages. Passages whose problem is already stored,
	// or repeated within items, are skipped before embedding. It returns the number of new passages.
	Ingest(ctx context.Context, items []*dto.PublishKnowledgeMessage) (int, error)
}

type knowledgeService struct {
	publisherService  IPublisherService
	knowledgeRepo     contract.KnowledgePassageRepository
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    events.Publisher
	metrics           *metrics.Recorder
	logger            logger.ILogger
}

func NewKnowledgeService(
	publisherService IPublisherService,
	knowledgeRepo contract.KnowledgePassageRepository,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher events.Publisher,
	recorder *metrics.Recorder,
	logger logger.ILogger,
) IKnowledgeService {
	if eventPublisher == nil {
		eventPublisher = events.NoopPublisher{}
	}
	return &knowledgeService{
		publisherService:  publisherService,
		knowledgeRepo:     knowledgeRepo,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		metrics:           recorder,
		logger:            logger,
	}
}

func (s *knowledgeService) Enqueue(ctx context.Context, req *dto.CreateKnowledgeRequest) (*dto.CreateKnowledgeResponse, error) {
	payload := dto.PublishKnowledgeMessage{
		Id:       uuid.New(),
		Problem:  strings.TrimSpace(req.Problem),
		Solution: strings.TrimSpace(req.Solution),
		Origin:   entity.OriginAPI,
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	s.metrics.RecordIngest("queued")
	return &dto.CreateKnowledgeResponse{Id: payload.Id}, nil
}

func (s *knowledgeService) Ingest(ctx context.Context, items []*dto.PublishKnowledgeMessage) (int, error) {
	passages := make([]*entity.KnowledgePassage, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Problem) == "" || strings.TrimSpace(item.Solution) == "" {
			s.metrics.RecordIngest("skipped")
			continue
		}

		origin := item.Origin
		if origin == "" {
			origin = entity.OriginAPI
		}
		passage := entity.NewKnowledgePassage(item.Problem, item.Solution, origin)
		if item.Id != uuid.Nil {
			passage.Id = item.Id
		}

		duplicate, err := s.isDuplicate(ctx, passage.ProblemHash, seen)
		if err != nil {
			s.metrics.RecordIngest("error")
			return 0, err
		}
		if duplicate {
			s.metrics.RecordIngest("duplicate")
			continue
		}

		// Only the problem is embedded; queries are matched against problems, not solutions.
		res, err := s.embeddingProvider.Generate(ctx, passage.Problem, embedding.TaskRetrievalDocument)
		if err != nil {
			s.metrics.RecordIngest("error")
			return 0, ragerr.Collaborator("embedding", err)
		}
		values := res.Values()
		if len(values) != embedding.Dimension {
			s.metrics.RecordIngest("error")
			return 0, fmt.Errorf("embedding has %d dimensions, expected %d", len(values), embedding.Dimension)
		}
		passage.EmbeddingValue = values
		passages = append(passages, passage)
	}

	if len(passages) == 0 {
		return 0, nil
	}

	if err := s.knowledgeRepo.CreateBulk(ctx, passages); err != nil {
		s.metrics.RecordIngest("error")
		return 0, err
	}

	for _, p := range passages {
		s.metrics.RecordIngest("stored")
		evt := events.New(events.TypeKnowledgeIngested, map[string]interface{}{
			"passage_id": p.Id.String(),
			"origin":     p.Origin,
		})
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("KNOWLEDGE-SERVICE", "Failed to publish event", map[string]interface{}{
				"event": evt.EventType(),
				"error": err.Error(),
			})
		}
	}

	return len(passages), nil
}

func (s *knowledgeService) isDuplicate(ctx context.Context, hash string, seen map[string]struct{}) (bool, error) {
	if _, ok := seen[hash]; ok {
		return true, nil
	}
	seen[hash] = struct{}{}

	existing, err := s.knowledgeRepo.FindOne(ctx, specification.ByProblemHash{Hash: hash})
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
