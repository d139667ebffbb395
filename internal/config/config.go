package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	KBFailureFallback = "fallback"
	KBFailureFail     = "fail"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Rag       RagConfig
	WebSearch WebSearchConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ConversationStore  string // "memory" or "redis"
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	Tavily       string
	Jina         string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "gemini" or "jina"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini", "huggingface"
	LLMModel          string
}

type RagConfig struct {
	SimilarityThreshold float64
	TopK                int
	KBFailureMode       string
	IngestTopic         string
}

type WebSearchConfig struct {
	Provider   string // "tavily" or "duckduckgo"
	Depth      string // "basic" or "advanced"
	MaxResults int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			ConversationStore:  strings.ToLower(getEnv("CONVERSATION_STORE", StoreMemory)),
			OtelEnabled:        getEnv("OTEL_ENABLED", "false") == "true",
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			Tavily:       getEnv("TAVILY_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "huggingface"),
			LLMModel:          getEnv("LLM_MODEL", "meta-llama/Meta-Llama-3-8B-Instruct"),
		},
		Rag: RagConfig{
			SimilarityThreshold: getEnvAsFloat("KB_SIMILARITY_THRESHOLD", 0.7),
			TopK:                getEnvAsInt("KB_TOP_K", 4),
			KBFailureMode:       strings.ToLower(getEnv("KB_FAILURE_MODE", KBFailureFallback)),
			IngestTopic:         getEnv("KB_INGEST_TOPIC", "KB_INGEST_PASSAGE"),
		},
		WebSearch: WebSearchConfig{
			Provider:   strings.ToLower(getEnv("WEB_SEARCH_PROVIDER", "tavily")),
			Depth:      getEnv("WEB_SEARCH_DEPTH", "basic"),
			MaxResults: getEnvAsInt("WEB_SEARCH_MAX_RESULTS", 5),
		},
	}
}

// FailOnKBError reports whether a knowledge base transport error ends the pipeline
// instead of falling back to web search.
func (c RagConfig) FailOnKBError() bool {
	return c.KBFailureMode == KBFailureFail
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
