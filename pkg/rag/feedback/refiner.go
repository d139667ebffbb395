package feedback

import (
	"context"
	"strings"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/llm"
	"math-agent-be/pkg/rag/prompt"
	"math-agent-be/pkg/rag/ragerr"
)

// Refiner rewrites a previous answer to take student feedback into account.
// It works only from the answer text; retrieval is not repeated.
type Refiner struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewRefiner(llmProvider llm.LLMProvider, logger logger.ILogger) *Refiner {
	return &Refiner{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (r *Refiner) Refine(ctx context.Context, question, priorAnswer, feedback string) (string, error) {
	if strings.TrimSpace(feedback) == "" {
		return "", ragerr.ErrEmptyFeedback
	}

	refined, err := r.llmProvider.Generate(ctx, prompt.BuildRefinement(question, priorAnswer, feedback))
	if err != nil {
		return "", ragerr.Collaborator("refinement", err)
	}

	r.logger.Debug("RAG-FEEDBACK", "Answer refined", map[string]interface{}{
		"feedback_length": len(feedback),
		"answer_length":   len(refined),
	})
	return refined, nil
}
