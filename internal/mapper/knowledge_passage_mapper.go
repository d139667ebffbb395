package mapper

import (
	"time"

	"math-agent-be/internal/entity"
	"math-agent-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type KnowledgePassageMapper struct{}

func NewKnowledgePassageMapper() *KnowledgePassageMapper {
	return &KnowledgePassageMapper{}
}

func (m *KnowledgePassageMapper) ToEntity(p *model.KnowledgePassage) *entity.KnowledgePassage {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.KnowledgePassage{
		Id:             p.Id,
		Problem:        p.Problem,
		ProblemHash:    p.ProblemHash,
		Content:        p.Content,
		EmbeddingValue: p.EmbeddingValue.Slice(),
		Origin:         p.Origin,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *KnowledgePassageMapper) ToModel(p *entity.KnowledgePassage) *model.KnowledgePassage {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.KnowledgePassage{
		Id:             p.Id,
		Problem:        p.Problem,
		ProblemHash:    p.ProblemHash,
		Content:        p.Content,
		EmbeddingValue: pgvector.NewVector(p.EmbeddingValue),
		Origin:         p.Origin,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *KnowledgePassageMapper) ToModels(passages []*entity.KnowledgePassage) []*model.KnowledgePassage {
	models := make([]*model.KnowledgePassage, len(passages))
	for i, p := range passages {
		models[i] = m.ToModel(p)
	}
	return models
}
