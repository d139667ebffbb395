package factory

import (
	"testing"

	"math-agent-be/pkg/embedding"
	"math-agent-be/pkg/embedding/jina"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	p, err := NewEmbeddingProvider(ProviderConfig{})
	require.NoError(t, err)
	assert.IsType(t, &embedding.OllamaProvider{}, p)

	p, err = NewEmbeddingProvider(ProviderConfig{Provider: " Gemini ", GeminiAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &embedding.GeminiProvider{}, p)

	p, err = NewEmbeddingProvider(ProviderConfig{Provider: "jina", JinaAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &jina.JinaProvider{}, p)
}

func TestNewEmbeddingProviderErrors(t *testing.T) {
	_, err := NewEmbeddingProvider(ProviderConfig{Provider: "gemini"})
	assert.ErrorContains(t, err, "GOOGLE_GEMINI_API_KEY")

	_, err = NewEmbeddingProvider(ProviderConfig{Provider: "jina"})
	assert.ErrorContains(t, err, "JINA_API_KEY")

	_, err = NewEmbeddingProvider(ProviderConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "unsupported")
}
