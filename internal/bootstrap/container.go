package bootstrap

import (
	"context"
	"log"
	"time"

	"doc-intel-be/internal/config"
	"doc-intel-be/internal/controller"
	"doc-intel-be/internal/pkg/logger"
	"doc-intel-be/internal/repository/contract"
	"doc-intel-be/internal/repository/implementation"
	"doc-intel-be/internal/repository/memory"
	"doc-intel-be/internal/repository/redisstore"
	"doc-intel-be/internal/service"
	"doc-intel-be/pkg/embedding"
	"doc-intel-be/pkg/embedding/jina"
	"doc-intel-be/pkg/llm/factory"
	"doc-intel-be/pkg/rag/history"
	"doc-intel-be/pkg/rag/search"
	"doc-intel-be/pkg/rag/session"
	"doc-intel-be/pkg/retry"

	pktNats "doc-intel-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	IngestController controller.IIngestController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// StopSweeper halts the periodic session sweep; main defers it.
	StopSweeper func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	chunkRepo := implementation.NewChunkRepository(db)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	providerTimeout := time.Duration(cfg.Ai.ProviderTimeoutSec) * time.Second

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
			providerTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIBaseURL,
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.EmbeddingModel,
			providerTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(
			cfg.Ai.JinaAPIKey,
			cfg.Ai.EmbeddingModel,
			providerTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: JINA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(
			cfg.Ai.GoogleGeminiKey,
			cfg.Ai.EmbeddingModel,
			providerTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	retryPolicy := retry.NewPolicy(
		cfg.Ai.MaxRetries,
		time.Duration(cfg.Ai.RetryBaseDelayMs)*time.Millisecond,
		2,
	)
	embeddingGateway := embedding.NewGateway(embeddingProvider, retryPolicy, cfg.Ai.MaxEmbedChars, sysLogger)

	llmBaseURL := cfg.Ai.OllamaBaseURL
	llmAPIKey := ""
	switch cfg.Ai.LLMProvider {
	case "openai":
		llmBaseURL = cfg.Ai.OpenAIBaseURL
		llmAPIKey = cfg.Ai.OpenAIAPIKey
	case "huggingface":
		llmBaseURL = "" // Provider falls back to the HF router URL
		llmAPIKey = cfg.Ai.HuggingFaceAPIKey
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		llmAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Session Storage
	sessionTTL := time.Duration(cfg.Session.TTLMinutes) * time.Minute

	var sessionRepo contract.SessionRepository
	if cfg.Session.Store == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			// A dead Redis at boot should not take chat down with it.
			log.Printf("[WARN] Failed to connect to Redis: %v. Falling back to in-memory sessions", err)
			sessionRepo = memory.NewSessionRepository(sessionTTL)
		} else {
			sessionRepo = redisstore.NewSessionRepository(rdb, sessionTTL, sysLogger)
			log.Printf("[INFO] Using Session Store: REDIS")
		}
	} else {
		sessionRepo = memory.NewSessionRepository(sessionTTL)
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	sessionManager := session.NewManager(sessionRepo, cfg.Session.HistoryLimit, sysLogger)
	stopSweeper := sessionManager.StartSweeper(time.Duration(cfg.Session.SweepMinutes) * time.Minute)

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 6. Services
	searchOrchestrator := search.NewOrchestrator(embeddingGateway, chunkRepo, sysLogger)
	historyLoader := history.NewLoader(sessionManager)

	publisherService := service.NewPublisherService(cfg.App.IngestTopicName, pubSub)
	ingestService := service.NewIngestService(
		chunkRepo,
		embeddingGateway,
		publisherService,
		natsPub,
		cfg.Ai.ChunkSize,
		cfg.Ai.ChunkOverlap,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopicName,
		ingestService,
	)

	chatService := service.NewChatService(
		sessionManager,
		historyLoader,
		searchOrchestrator,
		llmProvider,
		cfg.Ai,
		sysLogger,
	)

	// 7. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		IngestController: controller.NewIngestController(ingestService),
		HealthController: controller.NewHealthController(),

		ConsumerService: consumerService,

		StopSweeper: stopSweeper,
	}
}
