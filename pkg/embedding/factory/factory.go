package factory

import (
	"fmt"
	"strings"

	"math-agent-be/pkg/embedding"
	"math-agent-be/pkg/embedding/jina"
)

type ProviderConfig struct {
	Provider      string
	OllamaBaseURL string
	OllamaModel   string
	GeminiAPIKey  string
	JinaAPIKey    string
}

// NewEmbeddingProvider selects an embedding backend. Empty provider means ollama.
func NewEmbeddingProvider(cfg ProviderConfig) (embedding.EmbeddingProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini embedding provider requires GOOGLE_GEMINI_API_KEY")
		}
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey), nil
	case "jina":
		if cfg.JinaAPIKey == "" {
			return nil, fmt.Errorf("jina embedding provider requires JINA_API_KEY")
		}
		return jina.NewJinaProvider(cfg.JinaAPIKey, ""), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
