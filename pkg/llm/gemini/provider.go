package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"math-agent-be/pkg/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash-latest"
)

type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ llm.LLMProvider = &GeminiProvider{}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewGeminiProvider(apiKey, baseURL, model string) *GeminiProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (p *GeminiProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{Model: p.model}, options...)

	payload := generateRequest{}
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			payload.SystemInstruction = &content{Parts: []part{{Text: msg.Content}}}
		case llm.RoleAssistant, "model":
			payload.Contents = append(payload.Contents, content{Role: "model", Parts: []part{{Text: msg.Content}}})
		default:
			payload.Contents = append(payload.Contents, content{Role: llm.RoleUser, Parts: []part{{Text: msg.Content}}})
		}
	}
	if opts.Temperature > 0 || opts.MaxTokens > 0 {
		payload.GenerationConfig = &generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
		}
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadJSON))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	// key travels in a header so it never shows up in url.Error messages
	req.Header.Set("x-goog-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(resBody, &out); err != nil {
		if res.StatusCode != http.StatusOK {
			return "", fmt.Errorf("gemini error: status %d", res.StatusCode)
		}
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if out.Error != nil {
		return "", fmt.Errorf("gemini error: status %d: %s", out.Error.Code, out.Error.Message)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini error: status %d", res.StatusCode)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, pt := range out.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	return sb.String(), nil
}

func (p *GeminiProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}
