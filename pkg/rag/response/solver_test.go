package response

import (
	"context"
	"errors"
	"testing"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/llm"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, p)
	return f.reply, f.err
}

func TestSolve(t *testing.T) {
	model := &fakeLLM{reply: "Step 1: differentiate. The answer is 2x."}
	s := NewSolver(model, logger.NewNopLogger())

	answer, err := s.Solve(context.Background(), "derivative of x^2", "Problem: d/dx x^2\n\nSolution: 2x")

	require.NoError(t, err)
	assert.Equal(t, "Step 1: differentiate. The answer is 2x.", answer)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Solution: 2x")
	assert.Contains(t, model.prompts[0], "derivative of x^2")
}

func TestSolveFailure(t *testing.T) {
	s := NewSolver(&fakeLLM{err: errors.New("503 overloaded")}, logger.NewNopLogger())

	answer, err := s.Solve(context.Background(), "q", "")

	assert.Empty(t, answer)
	var cf *ragerr.CollaboratorFailure
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, "generation", cf.Stage)
	assert.Contains(t, err.Error(), "503 overloaded")
}
