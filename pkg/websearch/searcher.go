// Package websearch talks to live web search APIs.
package websearch

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderTavily     = "tavily"
	ProviderDuckDuckGo = "duckduckgo"

	DepthBasic    = "basic"
	DepthAdvanced = "advanced"

	defaultMaxResults = 5
	defaultTimeout    = 30 * time.Second
)

// Result is a single web hit. Content is the text used as generation context.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type Searcher interface {
	Search(ctx context.Context, query string, depth string) ([]Result, error)
}

type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

func NewSearcher(cfg Config) (Searcher, error) {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch strings.ToLower(cfg.Provider) {
	case "", ProviderTavily:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("tavily web search requires TAVILY_API_KEY")
		}
		return NewTavilySearcher(cfg), nil
	case ProviderDuckDuckGo:
		return NewDuckDuckGoSearcher(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported web search provider: %s", cfg.Provider)
	}
}
