package implementation

import (
	"context"
	"errors"

	"math-agent-be/internal/entity"
	"math-agent-be/internal/mapper"
	"math-agent-be/internal/model"
	"math-agent-be/internal/repository/contract"
	"math-agent-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultSearchLimit = 4

type KnowledgePassageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgePassageMapper
}

func NewKnowledgePassageRepository(db *gorm.DB) contract.KnowledgePassageRepository {
	return &KnowledgePassageRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgePassageMapper(),
	}
}

func (r *KnowledgePassageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// CreateBulk skips passages whose problem already exists.
func (r *KnowledgePassageRepositoryImpl) CreateBulk(ctx context.Context, passages []*entity.KnowledgePassage) error {
	if len(passages) == 0 {
		return nil
	}
	models := r.mapper.ToModels(passages)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "problem_hash"}}, DoNothing: true}).
		CreateInBatches(models, 100).Error
	if err != nil {
		return err
	}

	for i, m := range models {
		*passages[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KnowledgePassageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgePassage, error) {
	var m model.KnowledgePassage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KnowledgePassageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.KnowledgePassage{}), specs...)
	err := query.Count(&count).Error
	return count, err
}

func (r *KnowledgePassageRepositoryImpl) Truncate(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("TRUNCATE TABLE knowledge_passages").Error
}

func (r *KnowledgePassageRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgePassage, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	// pgvector cosine distance is 1 - cosine_similarity
	type result struct {
		model.KnowledgePassage
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_passages").
		Select("knowledge_passages.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgePassage, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKnowledgePassage{
			Passage:    r.mapper.ToEntity(&res.KnowledgePassage),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
