package search

import (
	"context"
	"strings"

	"math-agent-be/internal/pkg/logger"
	"math-agent-be/pkg/rag/state"
	"math-agent-be/pkg/websearch"
)

// WebSource asks a live web search provider.
type WebSource struct {
	searcher websearch.Searcher
	depth    string
	logger   logger.ILogger
}

func NewWebSource(searcher websearch.Searcher, depth string, logger logger.ILogger) *WebSource {
	if depth == "" {
		depth = websearch.DepthBasic
	}
	return &WebSource{searcher: searcher, depth: depth, logger: logger}
}

func (w *WebSource) Retrieve(ctx context.Context, question string) (string, state.Source, error) {
	results, err := w.searcher.Search(ctx, question, w.depth)
	if err != nil {
		return "", state.SourceNone, err
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		parts = append(parts, r.Content)
	}

	w.logger.Debug("RAG-SEARCH", "Web search completed", map[string]interface{}{
		"results": len(results),
		"used":    len(parts),
		"depth":   w.depth,
	})

	return strings.TrimSpace(joinPassages(parts)), state.SourceWebSearch, nil
}
