package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/config"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/controller"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/serverutils"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/implementation"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/memory"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/unitofwork"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/service"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/embedding"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/embedding/jina"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm/factory"
	natsbus "github.com/Eatosin/lexpertz-axiom-engine/pkg/nats"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/critic"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/draft"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/evidence"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/loop"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/utils"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	VerifyController    controller.IVerifyController
	DocumentController  controller.IDocumentController
	InferenceController controller.IInferenceController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger   logger.ILogger
	Registry *prometheus.Registry
	EventBus EventBus

	closers []io.Closer
}

// EventBus carries ingest jobs from the upload handler to the worker.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// NewContainer wires the application. db may be nil when the evidence store
// is "memory".
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	// 1. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	loopMetrics := loop.NewMetrics(registry)

	// 2. Repositories
	documentRepo, chunkRepo, repoFactory, err := newRepositories(db, cfg)
	if err != nil {
		return nil, err
	}

	// 3. Providers
	embeddingProvider, err := newEmbeddingProvider(cfg)
	if err != nil {
		return nil, err
	}
	var closers []io.Closer
	switch cfg.Ai.EmbeddingCache {
	case "redis":
		rdb := embedding.NewRedisClient(cfg.Ai.RedisURL)
		if pingErr := rdb.Ping(context.Background()).Err(); pingErr != nil {
			sysLogger.Warn("bootstrap", "Redis unreachable, embeddings will not be cached until it recovers", map[string]interface{}{
				"error": pingErr.Error(),
			})
		}
		embeddingProvider = embedding.NewRedisCachedProvider(embeddingProvider, rdb, cfg.Ai.EmbeddingCacheTTL)
		closers = append(closers, rdb)
	case "memory", "":
		embeddingProvider = embedding.NewCachedProvider(embeddingProvider, cfg.Ai.EmbeddingCacheTTL)
	default:
		return nil, fmt.Errorf("unsupported embedding cache: %s", cfg.Ai.EmbeddingCache)
	}
	sysLogger.Info("bootstrap", "Using embedding provider", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
		"cache":    cfg.Ai.EmbeddingCache,
	})

	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		BaseURL:       cfg.Ai.LLMBaseURL,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIKey:     cfg.Keys.OpenAI,
		GroqKey:       cfg.Keys.Groq,
		AnthropicKey:  cfg.Keys.Anthropic,
		GeminiKey:     cfg.Keys.GoogleGemini,
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	llmProvider = llm.RateLimited(llmProvider, rate.Limit(cfg.Ai.LLMRateLimit), cfg.Ai.LLMRateBurst)
	sysLogger.Info("bootstrap", "Using LLM provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. Verification loop
	gateway := evidence.NewGateway(embeddingProvider, chunkRepo, sysLogger,
		evidence.WithThreshold(cfg.Loop.MatchThreshold),
		evidence.WithDegradationHook(loopMetrics.RetrievalDegraded),
	)
	composer := draft.NewComposer(llmProvider, sysLogger)
	verifier := critic.NewVerifier(critic.NewLLMClassifier(llmProvider), sysLogger)
	controllerLoop := loop.NewController(gateway, composer, verifier, loop.Config{
		MaxAttempts:      cfg.Loop.MaxAttempts,
		RetrievalLimit:   cfg.Loop.RetrievalLimit,
		RetrievalTimeout: cfg.Loop.RetrievalTimeout,
		DraftTimeout:     cfg.Loop.DraftTimeout,
		VerifyTimeout:    cfg.Loop.VerifyTimeout,
	}, sysLogger, loop.WithMetrics(loopMetrics))

	// 5. Event Bus
	ingestLogger := logger.NewIsolatedLogger(ingestLogPath(cfg.App.LogFilePath))
	bus, err := newEventBus(cfg, ingestLogger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, bus)
	sysLogger.Info("bootstrap", "Using ingest transport", map[string]interface{}{
		"transport": cfg.Ingest.Transport,
	})

	publisherService := service.NewPublisherService(bus, cfg.Ingest.Topic)
	consumerService := service.NewConsumerService(
		bus,
		cfg.Ingest.Topic,
		documentRepo,
		repoFactory,
		embeddingProvider,
		utils.NewRecursiveSplitter(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		ingestLogger,
	)

	// 6. Services
	verifyService := service.NewVerifyService(controllerLoop)
	documentService := service.NewDocumentService(documentRepo, publisherService, sysLogger)

	// 7. Controllers
	if cfg.App.JwtSecret == "" {
		sysLogger.Warn("bootstrap", "JWT_SECRET is empty, token signatures are NOT verified", nil)
	}
	auth := serverutils.NewJwtMiddleware(cfg.App.JwtSecret)

	return &Container{
		VerifyController:   controller.NewVerifyController(verifyService, auth),
		DocumentController: controller.NewDocumentController(documentService, auth),
		InferenceController: controller.NewInferenceController(dto.InferenceResponse{
			LLMProvider:       cfg.Ai.LLMProvider,
			LLMModel:          cfg.Ai.LLMModel,
			EmbeddingProvider: cfg.Ai.EmbeddingProvider,
			EvidenceStore:     cfg.Database.EvidenceStore,
			MaxAttempts:       cfg.Loop.MaxAttempts,
		}, auth),
		ConsumerService: consumerService,
		Logger:          sysLogger,
		Registry:        registry,
		EventBus:        bus,
		closers:         closers,
	}, nil
}

// Close releases the event bus and cache connections.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newEventBus(cfg *config.Config, log logger.ILogger) (EventBus, error) {
	switch cfg.Ingest.Transport {
	case "gochannel", "":
		return gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		), nil
	case "nats":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		transport, err := natsbus.Connect(ctx, cfg.Ingest.NatsURL, log)
		if err != nil {
			return nil, fmt.Errorf("init nats transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported ingest transport: %s", cfg.Ingest.Transport)
	}
}

func newRepositories(db *gorm.DB, cfg *config.Config) (contract.DocumentRepository, contract.DocumentChunkRepository, unitofwork.RepositoryFactory, error) {
	switch cfg.Database.EvidenceStore {
	case "memory":
		store := memory.NewStore()
		documents := memory.NewDocumentRepository(store)
		chunks := memory.NewDocumentChunkRepository(store)
		return documents, chunks, unitofwork.NewPassthroughFactory(documents, chunks), nil
	case "postgres":
		if db == nil {
			return nil, nil, nil, fmt.Errorf("evidence store %q needs a database connection", cfg.Database.EvidenceStore)
		}
		return implementation.NewDocumentRepository(db), implementation.NewDocumentChunkRepository(db), unitofwork.NewRepositoryFactory(db), nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported evidence store: %s", cfg.Database.EvidenceStore)
	}
}

func newEmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	case "jina":
		return jina.NewJinaProvider(cfg.Keys.Jina), nil
	case "openai":
		return embedding.NewOpenAIProvider(cfg.Keys.OpenAI, "", cfg.Ai.OpenAIEmbeddingModel), nil
	case "gemini":
		return embedding.NewGeminiProvider(context.Background(), cfg.Keys.GoogleGemini)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}

// ingestLogPath puts the worker log next to the main log.
func ingestLogPath(mainLog string) string {
	return filepath.Join(filepath.Dir(mainLog), "ingest.log")
}
