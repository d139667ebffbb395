package search

import (
	"context"
	"strings"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/internal/repository/contract"
	"math-agent-be/pkg/embedding"
	"math-agent-be/pkg/rag/ragerr"
	"math-agent-be/pkg/rag/state"
)

const (
	DefaultSimilarityThreshold = 0.7
	DefaultTopK                = 4
)

type KnowledgeConfig struct {
	SimilarityThreshold float64
	TopK                int
}

// KnowledgeSource searches the curated knowledge base by vector similarity.
type KnowledgeSource struct {
	embeddingProvider embedding.EmbeddingProvider
	repo              contract.KnowledgePassageRepository
	config            KnowledgeConfig
	logger            logger.ILogger
}

func NewKnowledgeSource(
	embeddingProvider embedding.EmbeddingProvider,
	repo contract.KnowledgePassageRepository,
	config KnowledgeConfig,
	logger logger.ILogger,
) *KnowledgeSource {
	if config.SimilarityThreshold <= 0 {
		config.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if config.TopK <= 0 {
		config.TopK = DefaultTopK
	}
	return &KnowledgeSource{
		embeddingProvider: embeddingProvider,
		repo:              repo,
		config:            config,
		logger:            logger,
	}
}

// Retrieve never fails for "no results"; only embedding or database errors are returned.
func (k *KnowledgeSource) Retrieve(ctx context.Context, question string) (string, state.Source, error) {
	embeddingRes, err := k.embeddingProvider.Generate(ctx, question, embedding.TaskRetrievalQuery)
	if err != nil {
		return "", state.SourceNone, ragerr.Collaborator("embedding", err)
	}

	scored, err := k.repo.SearchSimilarWithScore(ctx, embeddingRes.Values(), k.config.TopK, k.config.SimilarityThreshold)
	if err != nil {
		return "", state.SourceNone, ragerr.Collaborator("knowledge base", err)
	}

	parts := make([]string, 0, len(scored))
	var best float64
	for _, s := range scored {
		if s == nil || s.Passage == nil {
			continue
		}
		parts = append(parts, s.Passage.Content)
		if s.Similarity > best {
			best = s.Similarity
		}
	}

	text := strings.TrimSpace(joinPassages(parts))
	k.logger.Debug("RAG-SEARCH", "Knowledge base lookup", map[string]interface{}{
		"passages":       len(parts),
		"top_similarity": best,
		"threshold":      k.config.SimilarityThreshold,
	})

	if text == "" {
		return "", state.SourceNone, nil
	}
	return text, state.SourceKnowledgeBase, nil
}
