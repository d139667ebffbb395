package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilySearch(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": got.Query,
			"results": []map[string]any{
				{"title": "Pythagorean theorem", "url": "https://a.test", "content": "a^2 + b^2 = c^2", "score": 0.9},
				{"title": "Right triangle", "url": "https://b.test", "content": "hypotenuse", "score": 0.5},
			},
		})
	}))
	defer srv.Close()

	s := NewTavilySearcher(Config{APIKey: "tvly-test", BaseURL: srv.URL, MaxResults: 3})
	results, err := s.Search(context.Background(), "pythagoras", DepthAdvanced)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a^2 + b^2 = c^2", results[0].Content)
	assert.Equal(t, "pythagoras", got.Query)
	assert.Equal(t, DepthAdvanced, got.SearchDepth)
	assert.Equal(t, 3, got.MaxResults)
	assert.Equal(t, "tvly-test", got.APIKey)
}

func TestTavilyUnknownDepthFallsBackToBasic(t *testing.T) {
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	s := NewTavilySearcher(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := s.Search(context.Background(), "q", "deep")
	require.NoError(t, err)
	assert.Equal(t, DepthBasic, got.SearchDepth)
}

func TestTavilyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer srv.Close()

	s := NewTavilySearcher(Config{APIKey: "bad", BaseURL: srv.URL})
	_, err := s.Search(context.Background(), "q", DepthBasic)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "integral of sin x", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{
			"AbstractText": "The integral of sin x is -cos x + C.",
			"AbstractSource": "Wikipedia",
			"AbstractURL": "https://en.wikipedia.org/wiki/Integral",
			"RelatedTopics": [
				{"Text": "Antiderivative", "FirstURL": "https://duckduckgo.com/Antiderivative"},
				{"Text": "", "FirstURL": "https://duckduckgo.com/empty"},
				{"Text": "Calculus", "FirstURL": "https://duckduckgo.com/Calculus"}
			]
		}`))
	}))
	defer srv.Close()

	s := NewDuckDuckGoSearcher(Config{BaseURL: srv.URL, MaxResults: 2})
	results, err := s.Search(context.Background(), "integral of sin x", DepthBasic)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Wikipedia", results[0].Title)
	assert.Equal(t, "Antiderivative", results[1].Content)
}

func TestDuckDuckGoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewDuckDuckGoSearcher(Config{BaseURL: srv.URL})
	_, err := s.Search(context.Background(), "q", DepthBasic)
	assert.Error(t, err)
}

func TestNewSearcher(t *testing.T) {
	_, err := NewSearcher(Config{Provider: ProviderTavily})
	assert.Error(t, err, "tavily without key")

	s, err := NewSearcher(Config{Provider: "DuckDuckGo"})
	require.NoError(t, err)
	assert.IsType(t, &DuckDuckGoSearcher{}, s)

	s, err = NewSearcher(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &TavilySearcher{}, s)

	_, err = NewSearcher(Config{Provider: "bing"})
	assert.Error(t, err)
}
