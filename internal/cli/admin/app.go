// Package admin holds the shopdeskd commands: the API server and the local
// operator commands that run against the same database and documents.
package admin

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cloo-solutions/shopdesk/internal/cache"
	"github.com/cloo-solutions/shopdesk/internal/config"
	"github.com/cloo-solutions/shopdesk/internal/database"
	"github.com/cloo-solutions/shopdesk/internal/knowledge"
	"github.com/cloo-solutions/shopdesk/internal/logging"
	"github.com/cloo-solutions/shopdesk/internal/openai"
	"github.com/cloo-solutions/shopdesk/internal/repository"
	"github.com/cloo-solutions/shopdesk/internal/service"
	"github.com/cloo-solutions/shopdesk/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
)

var errModelNotConfigured = errors.New("language model not configured: SHOPDESK_OPENAI_API_KEY required")

// generationStore is the invalidation counter shared by uploads, the
// documents watcher and the index cache
type generationStore interface {
	knowledge.GenerationStore
	service.GenerationBumper
	storage.GenerationBumper
}

type model interface {
	knowledge.Embedder
	service.Generator
}

// unconfiguredModel stands in for OpenAI when no key is set. Structured
// intents keep working and knowledge base questions get the fallback reply.
type unconfiguredModel struct{}

func (unconfiguredModel) Embed(context.Context, string) ([]float32, error) {
	return nil, errModelNotConfigured
}

func (unconfiguredModel) Generate(context.Context, string) (string, error) {
	return "", errModelNotConfigured
}

// app is the wired object graph shared by serve, ask and upload
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	pool        *pgxpool.Pool
	redis       *redis.Client
	documents   service.DocumentStore
	fsDocuments *storage.FilesystemDocumentStore // nil unless DOCUMENTS_BACKEND=fs
	generations generationStore
	indexes     *knowledge.IndexCache

	chat     *service.ChatService
	uploads  *service.DocumentService
	records  *service.RecordService
	feedback *service.FeedbackService
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	logger := logging.New(logging.Config{
		Level:  level,
		Format: cfg.LogFormat,
		Output: os.Stderr,
	})
	return cfg, logger, nil
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.pool = pool
	logger.Info().Msg("connected to database")

	if cfg.HasRedis() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.redis = client
		a.generations = cache.NewRedisGenerations(client)
		logger.Info().Msg("index generations shared through redis")
	} else {
		a.generations = cache.NewLocalGenerations()
	}

	switch cfg.DocumentsBackend {
	case config.DocumentsBackendS3:
		store, err := storage.NewS3DocumentStore(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := store.EnsureBucket(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("documents stored in S3")
		a.documents = store
	default:
		store := storage.NewFilesystemDocumentStore(cfg.DocumentsDir)
		logger.Info().Str("dir", store.Root()).Msg("documents stored on disk")
		a.documents = store
		a.fsDocuments = store
	}

	var llm model = unconfiguredModel{}
	if cfg.HasOpenAI() {
		llm = openai.NewClientWithConfig(openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			EmbeddingModel: goopenai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
			ChatModel:      cfg.OpenAIChatModel,
		})
	} else {
		logger.Warn().Msg("SHOPDESK_OPENAI_API_KEY not set, knowledge base answers disabled")
	}

	recordRepo := repository.NewRecordRepository(pool)
	cacheCfg := knowledge.DefaultCacheConfig()
	cacheCfg.EmbedTimeout = cfg.EmbeddingTimeout
	a.indexes = knowledge.NewIndexCache(
		a.documents,
		llm,
		a.generations,
		repository.NewChunkRepository(pool),
		cacheCfg,
		logger,
	)

	fallback := service.NewFallbackService(a.indexes, llm, llm, service.FallbackConfig{
		GenerationTimeout: cfg.GenerationTimeout,
		EmbeddingTimeout:  cfg.EmbeddingTimeout,
	}, logger)

	a.chat = service.NewChatService(recordRepo, fallback, nil, logger)
	a.uploads = service.NewDocumentService(a.documents, a.generations, logger)
	a.records = service.NewRecordService(recordRepo)
	a.feedback = service.NewFeedbackService(repository.NewFeedbackRepository(pool))

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("closing redis client")
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
