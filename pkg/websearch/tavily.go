package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TavilySearcher queries the Tavily Search API.
type TavilySearcher struct {
	client     *http.Client
	apiKey     string
	baseURL    string
	maxResults int
}

func NewTavilySearcher(cfg Config) *TavilySearcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &TavilySearcher{
		client:     &http.Client{Timeout: timeout},
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxResults: maxResults,
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
	IncludeImages bool   `json:"include_images"`
	MaxResults    int    `json:"max_results"`
}

type tavilyResponse struct {
	Answer  string   `json:"answer"`
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

func (t *TavilySearcher) Search(ctx context.Context, query string, depth string) ([]Result, error) {
	if depth != DepthAdvanced {
		depth = DepthBasic
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:      t.apiKey,
		Query:       query,
		SearchDepth: depth,
		MaxResults:  t.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var tavilyResp tavilyResponse
	if err := json.Unmarshal(respBody, &tavilyResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return tavilyResp.Results, nil
}
