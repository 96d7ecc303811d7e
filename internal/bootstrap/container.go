package bootstrap

import (
	"context"
	"log"
	"time"

	"content-advisor-be/internal/config"
	"content-advisor-be/internal/controller"
	"content-advisor-be/internal/pkg/logger"
	"content-advisor-be/internal/repository/unitofwork"
	"content-advisor-be/internal/service"
	"content-advisor-be/pkg/advisory/session"
	"content-advisor-be/pkg/embedding"
	"content-advisor-be/pkg/events"
	"content-advisor-be/pkg/llm/factory"
	"content-advisor-be/pkg/store"

	pktNats "content-advisor-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AdvisoryController controller.IAdvisoryController
	ContentController  controller.IContentController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus (in-process embed queue)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "openai":
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIBaseURL, cfg.Ai.OpenAIApiKey, "")
		log.Printf("[INFO] Using Embedding Provider: OPENAI")
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Redis-backed lookaside cache for embeddings. Redis being down only
	// costs the cache, not the pipeline.
	if rdb := connectRedis(cfg.App.RedisURL); rdb != nil {
		embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb, 24*time.Hour)
		log.Printf("[INFO] Embedding cache enabled (redis)")
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenAIApiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// NATS audit bus; optional
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 4. Session state
	sessionConfig := session.DefaultConfig()
	sessionConfig.IdleTTL = cfg.Session.IdleTTL
	sessionConfig.CleanupInterval = cfg.Session.CleanupInterval
	sessionConfig.MaxTurns = cfg.Session.MaxTurns

	sessionManager := session.NewManager(sessionConfig, log.Default())
	if natsPub != nil {
		sessionManager.OnExpired(func(s *store.Session) {
			evt := events.BaseEvent{
				Type: events.TypeSessionExpired,
				Data: map[string]interface{}{
					"session_id": s.ID,
					"tenant_id":  s.TenantID,
					"turns":      len(s.Turns),
				},
				OccurredAt: time.Now(),
			}
			if err := natsPub.Publish(context.Background(), evt); err != nil {
				log.Printf("[WARN] Failed to publish session expired event: %v", err)
			}
		})
	}

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Ai.EmbedTopic)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Ai.EmbedTopic,
		uowFactory,
		embeddingProvider,
	)

	contentService := service.NewContentService(uowFactory, publisherService, natsPub, sysLogger)
	advisoryService := service.NewAdvisoryService(
		cfg,
		uowFactory,
		llmProvider,
		embeddingProvider,
		sessionManager,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		AdvisoryController: controller.NewAdvisoryController(advisoryService),
		ContentController:  controller.NewContentController(contentService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
	}
}

func connectRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, embedding cache disabled: %v", err)
		return nil
	}
	return rdb
}
