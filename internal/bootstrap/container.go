package bootstrap

import (
	"context"
	"fmt"

	"math-agent-be/internal/config"
	"math-agent-be/internal/controller"
	"math-agent-be/internal/pkg/logger"
	"math-agent-be/internal/repository/contract"
	"math-agent-be/internal/repository/implementation"
	"math-agent-be/internal/repository/memory"
	"math-agent-be/internal/repository/redisrepo"
	"math-agent-be/internal/service"
	"math-agent-be/pkg/embedding"
	embeddingFactory "math-agent-be/pkg/embedding/factory"
	"math-agent-be/pkg/events"
	llmFactory "math-agent-be/pkg/llm/factory"
	"math-agent-be/pkg/metrics"
	pktNats "math-agent-be/pkg/nats"
	"math-agent-be/pkg/rag/executor"
	"math-agent-be/pkg/rag/feedback"
	"math-agent-be/pkg/rag/guardrail"
	"math-agent-be/pkg/rag/response"
	"math-agent-be/pkg/rag/search"
	"math-agent-be/pkg/websearch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AgentController     controller.IAgentController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared infrastructure
	Logger   logger.ILogger
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer

	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	recorder := metrics.New(prometheus.DefaultRegisterer)
	c := &Container{
		Logger:   sysLogger,
		Metrics:  recorder,
		Gatherer: prometheus.DefaultGatherer,
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var eventPublisher events.Publisher = events.NoopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, domain events disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 3. AI Providers
	embeddingProvider, err := NewEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
	})

	llmProvider, err := llmFactory.NewLLMProvider(llmFactory.ProviderConfig{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		HFAPIKey:      cfg.Keys.HuggingFace,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	searcher, err := websearch.NewSearcher(websearch.Config{
		Provider:   cfg.WebSearch.Provider,
		APIKey:     cfg.Keys.Tavily,
		MaxResults: cfg.WebSearch.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	// 4. Repositories
	knowledgeRepo := implementation.NewKnowledgePassageRepository(db)
	conversationRepo, err := c.newConversationRepository(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	// 5. Pipeline
	knowledgeSource := search.NewKnowledgeSource(embeddingProvider, knowledgeRepo, search.KnowledgeConfig{
		SimilarityThreshold: cfg.Rag.SimilarityThreshold,
		TopK:                cfg.Rag.TopK,
	}, sysLogger)
	webSource := search.NewWebSource(searcher, cfg.WebSearch.Depth, sysLogger)
	solver := response.NewSolver(llmProvider, sysLogger)

	pipeline := executor.NewPipelineExecutor(
		knowledgeSource,
		webSource,
		solver,
		executor.Config{FailOnKBError: cfg.Rag.FailOnKBError()},
		recorder,
		sysLogger,
	)

	// 6. Services
	agentService := service.NewAgentService(
		guardrail.NewGuardrail(llmProvider, recorder, sysLogger),
		pipeline,
		feedback.NewRefiner(llmProvider, sysLogger),
		conversationRepo,
		eventPublisher,
		recorder,
		sysLogger,
	)

	publisherService := service.NewPublisherService(cfg.Rag.IngestTopic, pubSub)
	knowledgeService := service.NewKnowledgeService(
		publisherService,
		knowledgeRepo,
		embeddingProvider,
		eventPublisher,
		recorder,
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.Rag.IngestTopic, knowledgeService, sysLogger)

	// 7. Controllers
	c.AgentController = controller.NewAgentController(agentService)
	c.KnowledgeController = controller.NewKnowledgeController(knowledgeService)

	return c, nil
}

// Close releases bus connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// NewEmbeddingProvider is shared with the knowledge base tools so both embed the same way.
func NewEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	provider, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.ProviderConfig{
		Provider:      cfg.Ai.EmbeddingProvider,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OllamaModel:   cfg.Ai.OllamaModel,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		JinaAPIKey:    cfg.Keys.Jina,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	return provider, nil
}

func (c *Container) newConversationRepository(cfg *config.Config, log logger.ILogger) (contract.ConversationRepository, error) {
	if cfg.App.ConversationStore != config.StoreRedis {
		return memory.NewConversationRepository(), nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using it as address", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis conversation store: %w", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })

	return redisrepo.NewConversationRepository(rdb, ""), nil
}
