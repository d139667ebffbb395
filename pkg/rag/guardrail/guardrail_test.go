package guardrail

import (
	"context"
	"errors"
	"testing"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/llm"
	"math-agent-be/pkg/metrics"
	"math-agent-be/pkg/rag/ragerr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, "", opts...)
}

func (f *fakeLLM) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestPrecheck(t *testing.T) {
	tests := []struct {
		reply string
		want  bool
	}{
		{"yes", true},
		{"Yes.", true},
		{"  YES\n", true},
		{"no", false},
		{"No, this is about finance.", false},
		{"", false},
		{"maybe", false},
		{"I am not sure", false},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			model := &fakeLLM{reply: tt.reply}
			g := NewGuardrail(model, nil, logger.NewNopLogger())

			ok, err := g.Precheck(context.Background(), "question")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, 1, model.calls)
		})
	}
}

func TestPrecheckErrorIsNotAcceptance(t *testing.T) {
	rec := metrics.New(prometheus.NewRegistry())
	g := NewGuardrail(&fakeLLM{reply: "yes", err: errors.New("quota exceeded")}, rec, logger.NewNopLogger())

	ok, err := g.Precheck(context.Background(), "What is 2+2?")

	assert.False(t, ok)
	var cf *ragerr.CollaboratorFailure
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, "classification", cf.Stage)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.GuardrailChecks.WithLabelValues("error")))
}

func TestPostcheck(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "The answer is 4.", "The answer is 4."},
		{"surrounding whitespace", "\n  x = 2  \n", "x = 2"},
		{"bold", "The **answer** is 4.", "The answer is 4."},
		{"headers", "# Solution\nStep 1\n## Result\nx = 2", "Solution\nStep 1\nResult\nx = 2"},
		{"hash inside line kept", "Use C# or item #3", "Use C# or item #3"},
		{"bold at start", "**Answer:** 4", "Answer: 4"},
		{"two bold spans", "**a** and **b**", "a and b"},
		{"exponent kept", "Step 1: f(x) = x**2, so f'(x) = 2x", "Step 1: f(x) = x**2, so f'(x) = 2x"},
		{"two exponents kept", "x**2 + y**2 = r**2", "x**2 + y**2 = r**2"},
		{"count sign kept", "Step 1\n# of solutions: 2", "Step 1\n# of solutions: 2"},
		{"math answer untouched", "Step 1: f(x) = x**2\n# of solutions: 2", "Step 1: f(x) = x**2\n# of solutions: 2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Postcheck(tt.in))
		})
	}
}

func TestPostcheckIsPure(t *testing.T) {
	in := "**x** = 1"
	assert.Equal(t, Postcheck(in), Postcheck(in))
	assert.Equal(t, "**x** = 1", in)
}
