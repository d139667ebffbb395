package gemini

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

func TestChatMapsRoles(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.RawQuery, "key must not be sent in the URL")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"x = "},{"text":"2"}]}}]}`))
	}))
	defer srv.Close()

	p := NewGeminiProvider("secret", srv.URL+"/", "gemini-test")
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "tutor"},
		{Role: llm.RoleUser, Content: "solve"},
		{Role: llm.RoleAssistant, Content: "ok"},
	}, llm.WithMaxTokens(50))
	require.NoError(t, err)

	assert.Equal(t, "x = 2", out)
	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "tutor", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 2)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, 50, got.GenerationConfig.MaxOutputTokens)
}

func TestChatErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid"}}`, "API key not valid"},
		{"plain status", http.StatusBadGateway, `<html>`, "status 502"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewGeminiProvider("k", srv.URL, "").Generate(context.Background(), "q")
			assert.ErrorContains(t, err, tc.want)
		})
	}
}
