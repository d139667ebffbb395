package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// DuckDuckGoSearcher uses the keyless DuckDuckGo Instant Answer API.
// Depth has no equivalent there and is ignored.
type DuckDuckGoSearcher struct {
	client     *http.Client
	endpoint   string
	maxResults int
}

func NewDuckDuckGoSearcher(cfg Config) *DuckDuckGoSearcher {
	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com/"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DuckDuckGoSearcher{
		client:     &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		maxResults: maxResults,
	}
}

type ddgResponse struct {
	AbstractText   string `json:"AbstractText"`
	AbstractSource string `json:"AbstractSource"`
	AbstractURL    string `json:"AbstractURL"`
	RelatedTopics  []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (d *DuckDuckGoSearcher) Search(ctx context.Context, query string, depth string) ([]Result, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("no_html", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "math-agent/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("duckduckgo api returned status %d", resp.StatusCode)
	}

	var parsed ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse duckduckgo response: %w", err)
	}

	results := make([]Result, 0, d.maxResults)
	if parsed.AbstractText != "" {
		results = append(results, Result{
			Title:   parsed.AbstractSource,
			URL:     parsed.AbstractURL,
			Content: parsed.AbstractText,
		})
	}

	for _, topic := range parsed.RelatedTopics {
		if len(results) >= d.maxResults {
			break
		}
		if topic.Text == "" || topic.FirstURL == "" {
			continue
		}
		title := topic.Text
		if len(title) > 100 {
			title = title[:100]
		}
		results = append(results, Result{
			Title:   title,
			URL:     topic.FirstURL,
			Content: topic.Text,
		})
	}

	return results, nil
}
