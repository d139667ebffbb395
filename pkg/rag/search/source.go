// Package search provides the two context sources of the answering pipeline.
package search

import (
	"context"
	"strings"

	"math-agent-be/pkg/rag/state"
)

// ContextSource retrieves grounding text for a question.
// An empty string means nothing usable was found.
type ContextSource interface {
	Retrieve(ctx context.Context, question string) (string, state.Source, error)
}

const passageSeparator = "\n\n"

func joinPassages(parts []string) string {
	return strings.Join(parts, passageSeparator)
}
