package bootstrap

import (
	"context"
	"log"

	"ai-shopassist-be/internal/config"
	"ai-shopassist-be/internal/controller"
	"ai-shopassist-be/internal/handler"
	"ai-shopassist-be/internal/pkg/logger"
	"ai-shopassist-be/internal/repository/memory"
	"ai-shopassist-be/internal/repository/redisstore"
	"ai-shopassist-be/internal/repository/unitofwork"
	"ai-shopassist-be/internal/service"
	"ai-shopassist-be/internal/websocket"
	"ai-shopassist-be/pkg/embedding"
	"ai-shopassist-be/pkg/embedding/jina"
	"ai-shopassist-be/pkg/llm/factory"
	"ai-shopassist-be/pkg/search"
	"ai-shopassist-be/pkg/store"

	pktNats "ai-shopassist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	CatalogController   controller.ICatalogController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Chat
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub

	// In-memory search snapshot (exposed for the health endpoint)
	SearchIndex *search.Index
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

	// 3. Indexing Pipeline
	// Initialize Embedding Indexer based on Config
	var indexer embedding.Indexer
	if cfg.Ai.EmbeddingProvider == "ollama" {
		indexer = embedding.NewProviderIndexer(embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		))
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		indexer = embedding.NewProviderIndexer(jina.NewJinaProvider(cfg.Keys.Jina))
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else if cfg.Ai.EmbeddingProvider == "gemini" {
		indexer = embedding.NewProviderIndexer(embedding.NewGeminiProvider(cfg.Keys.GoogleGemini))
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		indexer = embedding.NewHeuristicIndexer()
		log.Printf("[INFO] Using Embedding Provider: HEURISTIC")
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Session Store
	var sessions store.SessionStore
	if cfg.Session.Backend == "redis" {
		sessions = redisstore.NewSessionRepository(rdb, cfg.Session.TTL, sysLogger)
		log.Printf("[INFO] Using Session Backend: REDIS")
	} else {
		sessions = memory.NewSessionRepository(cfg.Session.TTL)
		log.Printf("[INFO] Using Session Backend: MEMORY")
	}

	// In-memory search snapshot
	searchIndex := search.NewIndex()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.IndexTopicName, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IndexTopicName,
		uowFactory,
		indexer,
		searchIndex,
		natsPub,
	)

	catalogService := service.NewCatalogService(
		uowFactory,
		searchIndex,
		indexer,
		publisherService,
		natsPub,
	)
	knowledgeService := service.NewKnowledgeService(
		uowFactory,
		searchIndex,
		indexer,
		publisherService,
	)
	assistantService := service.NewAssistantService(
		searchIndex,
		indexer,
		llmProvider,
		sessions,
		cfg.Assistant.Tuning,
		cfg.Assistant.RequestTimeout,
		natsPub,
	)

	// Load the search snapshot from Postgres before serving traffic.
	if _, err := catalogService.Reindex(context.Background()); err != nil {
		log.Printf("[WARN] Initial index load failed: %v", err)
	}

	// 4.5 WebSocket Chat
	wsLogger := logger.NewIsolatedLogger("logs/chat.log")
	wsHub := websocket.NewHub(assistantService, rdb, wsLogger)
	go wsHub.Run()

	chatHandler := handler.NewChatHandler(wsHub, wsLogger)

	// 4.6 Event Audit Trail
	eventLogService := service.NewEventLogService(natsSub, sysLogger)

	// Start Service (Worker)
	if natsSub != nil {
		go eventLogService.Start()
	}

	// 5. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService, wsHub),
		CatalogController:   controller.NewCatalogController(catalogService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ChatHandler:  chatHandler,
		WebSocketHub: wsHub,
		SearchIndex:  searchIndex,

		ConsumerService: consumerService,
	}
}
