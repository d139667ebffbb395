package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"math-agent-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"x = 2"},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be terse"},
		{Role: "model", Content: "earlier"},
		{Role: llm.RoleUser, Content: "solve x+2=4"},
	}, llm.WithMaxTokens(10))
	require.NoError(t, err)

	assert.Equal(t, "x = 2", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, llm.RoleAssistant, got.Messages[1].Role)
	assert.Equal(t, 10, got.Options.NumPredict)
}

func TestChatErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`model not found`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "missing").Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "status 404")
}

func TestChatErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"out of memory"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "big").Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "out of memory")
}
