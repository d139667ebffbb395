package factory

import (
	"fmt"

	"math-agent-be/pkg/llm"
	"math-agent-be/pkg/llm/gemini"
	"math-agent-be/pkg/llm/huggingface"
	"math-agent-be/pkg/llm/ollama"
)

// ProviderConfig carries everything any backend might need; each backend reads its own fields.
type ProviderConfig struct {
	Provider      string
	Model         string
	OllamaBaseURL string
	GeminiAPIKey  string
	HFAPIKey      string
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(cfg.GeminiAPIKey, "", cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.HFAPIKey, "", cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
