package feedback

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

func TestRefine(t *testing.T) {
	model := &fakeLLM{reply: "Step 1: subtract 1 from both sides. x = 1."}
	r := NewRefiner(model, logger.NewNopLogger())

	refined, err := r.Refine(context.Background(), "Solve x+1=2", "x = 1", "show each step")

	require.NoError(t, err)
	assert.Equal(t, "Step 1: subtract 1 from both sides. x = 1.", refined)
	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "Solve x+1=2")
	assert.Contains(t, model.prompts[0], "x = 1")
	assert.Contains(t, model.prompts[0], "show each step")
}

func TestRefineEmptyFeedbackMakesNoCall(t *testing.T) {
	for _, fb := range []string{"", "   ", "\n\t"} {
		model := &fakeLLM{reply: "unused"}
		r := NewRefiner(model, logger.NewNopLogger())

		_, err := r.Refine(context.Background(), "q", "a", fb)

		assert.ErrorIs(t, err, ragerr.ErrEmptyFeedback)
		assert.Empty(t, model.prompts)
	}
}

func TestRefineErrorIsReturned(t *testing.T) {
	r := NewRefiner(&fakeLLM{err: errors.New("rate limited")}, logger.NewNopLogger())

	refined, err := r.Refine(context.Background(), "q", "a", "more detail")

	assert.Empty(t, refined)
	var cf *ragerr.CollaboratorFailure
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, "refinement", cf.Stage)
}

func TestRefineTwiceCallsModelTwice(t *testing.T) {
	model := &fakeLLM{reply: "v"}
	r := NewRefiner(model, logger.NewNopLogger())

	_, _ = r.Refine(context.Background(), "q", "a", "fb")
	_, _ = r.Refine(context.Background(), "q", "a", "fb")

	assert.Len(t, model.prompts, 2)
}
