package response

import (
	"context"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/llm"
	"math-agent-be/pkg/rag/prompt"
	"math-agent-be/pkg/rag/ragerr"
)

// Solver generates the step-by-step answer from the question and whatever context was retrieved.
type Solver struct {
	llmProvider llm.LLMProvider
	logger      logger.ILogger
}

func NewSolver(llmProvider llm.LLMProvider, logger logger.ILogger) *Solver {
	return &Solver{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Solve makes exactly one generation call. context may be empty.
func (s *Solver) Solve(ctx context.Context, question, context string) (string, error) {
	answer, err := s.llmProvider.Generate(ctx, prompt.BuildSolution(question, context))
	if err != nil {
		return "", ragerr.Collaborator("generation", err)
	}

	s.logger.Debug("RAG-GENERATION", "Solution generated", map[string]interface{}{
		"has_context":   context != "",
		"answer_length": len(answer),
	})
	return answer, nil
}
