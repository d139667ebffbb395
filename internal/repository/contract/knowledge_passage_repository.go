package contract

import (
	"context"

	"math-agent-be/internal/entity"
	"math-agent-be/internal/repository/specification"
)

// ScoredKnowledgePassage wraps a passage with its cosine similarity to the query (1.0 = identical)
type ScoredKnowledgePassage struct {
	Passage    *entity.KnowledgePassage
	Similarity float64
}

type KnowledgePassageRepository interface {
	CreateBulk(ctx context.Context, passages []*entity.KnowledgePassage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgePassage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Truncate(ctx context.Context) error
	// SearchSimilarWithScore returns at most limit passages whose similarity is >= threshold, best first
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredKnowledgePassage, error)
}
