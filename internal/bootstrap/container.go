package bootstrap

import (
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cara-compliance-be/internal/config"
	"cara-compliance-be/internal/controller"
	"cara-compliance-be/internal/pkg/logger"
	"cara-compliance-be/internal/repository/implementation"
	"cara-compliance-be/internal/repository/memory"
	"cara-compliance-be/internal/repository/unitofwork"
	"cara-compliance-be/internal/service"
	"cara-compliance-be/pkg/assist/workflow"
	"cara-compliance-be/pkg/assist/workflow/riskscore"
	"cara-compliance-be/pkg/embedding"
	"cara-compliance-be/pkg/llm/factory"
	pktNats "cara-compliance-be/pkg/nats"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for seeding and shutdown
	KnowledgeService service.IKnowledgeService
	Logger           logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	publisherService := service.NewPublisherService(pubSub, cfg.App.IngestTopic)

	// NATS is auxiliary; the API works without it
	eventPublisher, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("Warn: NATS unavailable, domain events disabled: %v", err)
		eventPublisher = nil
	}

	// 3. AI Providers
	embeddingProvider := newEmbeddingProvider(cfg)
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Ai.DeepSeekAPIKey,
	)
	if err != nil {
		log.Panicf("Unable to initialize LLM provider: %v", err)
	}

	// 4. Reply cache
	replyCache := newReplyCache(cfg)

	// 5. Workflow state store
	var workflowStore workflow.Store
	if db != nil {
		workflowStore = implementation.NewPersistentWorkflowStore(
			implementation.NewWorkflowStateRepository(db),
		)
	} else {
		workflowStore = memory.NewWorkflowStore()
	}

	// 6. Services
	assistantService := service.NewAssistantService(
		uowFactory,
		embeddingProvider,
		llmProvider,
		workflowStore,
		replyCache,
		riskscore.NewMatrixStrategy(),
		cfg.Retrieval,
	)
	knowledgeService := service.NewKnowledgeService(
		uowFactory,
		embeddingProvider,
		publisherService,
		eventPublisher,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		knowledgeService,
		sysLogger,
	)

	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		ConsumerService:     consumerService,
		KnowledgeService:    knowledgeService,
		Logger:              sysLogger,
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.Provider {
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		return embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	default:
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "deepseek" {
		return cfg.Ai.DeepSeekBaseURL
	}
	return cfg.Ai.OllamaBaseURL
}

func newReplyCache(cfg *config.Config) service.IReplyCache {
	if cfg.Retrieval.ReplyCacheTTL <= 0 {
		return service.NewNoopReplyCache()
	}
	opts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("Warn: invalid Redis URL, reply cache disabled: %v", err)
		return service.NewNoopReplyCache()
	}
	client := redis.NewClient(opts)
	return service.NewRedisReplyCache(client, time.Duration(cfg.Retrieval.ReplyCacheTTL)*time.Minute)
}
