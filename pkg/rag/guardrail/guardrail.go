package guardrail

import (
	"context"
	"regexp"
	"strings"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/llm"
	"math-agent-be/pkg/metrics"
	"math-agent-be/pkg/rag/prompt"
	"math-agent-be/pkg/rag/ragerr"
)

// Guardrail keeps the agent on topic and cleans up its output.
type Guardrail struct {
	llmProvider llm.LLMProvider
	metrics     *metrics.Recorder
	logger      logger.ILogger
}

func NewGuardrail(llmProvider llm.LLMProvider, recorder *metrics.Recorder, logger logger.ILogger) *Guardrail {
	return &Guardrail{
		llmProvider: llmProvider,
		metrics:     recorder,
		logger:      logger,
	}
}

// Precheck asks the model whether question is math/science/technical.
// Anything without "yes" in the reply is a rejection. A failed call is returned as an error,
// never treated as acceptance.
func (g *Guardrail) Precheck(ctx context.Context, question string) (bool, error) {
	reply, err := g.llmProvider.Generate(ctx, prompt.BuildScopeCheck(question), llm.WithMaxTokens(10))
	if err != nil {
		g.metrics.RecordGuardrail("error")
		return false, ragerr.Collaborator("classification", err)
	}

	accepted := IsAffirmative(reply)
	if accepted {
		g.metrics.RecordGuardrail("accepted")
	} else {
		g.metrics.RecordGuardrail("rejected")
		g.logger.Info("GUARDRAIL", "Question rejected as out of scope", map[string]interface{}{
			"classifier_reply": reply,
		})
	}
	return accepted, nil
}

func IsAffirmative(reply string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(reply)), "yes")
}

var (
	// A bold span opens at a word boundary and hugs its text, so x**2 and a**b + c**d never match.
	boldSpan = regexp.MustCompile(`(^|[^\w*])\*\*([^\s*](?:[^*\n]*[^\s*])?)\*\*`)
	// Headings are capitalised; "# of roots" is left alone.
	headerMarker = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]+([A-Z])`)
)

// Postcheck trims the answer and strips bold and header markup the solver was told not to emit.
// Exponent notation and count signs are kept as written.
func Postcheck(answer string) string {
	answer = boldSpan.ReplaceAllString(answer, "${1}${2}")
	answer = headerMarker.ReplaceAllString(answer, "${1}")
	return strings.TrimSpace(answer)
}

func (g *Guardrail) Postcheck(answer string) string {
	return Postcheck(answer)
}
