package bootstrap

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/feichai0017/concept-graph/config"
	"github.com/feichai0017/concept-graph/internal/ai"
	"github.com/feichai0017/concept-graph/internal/pipeline"
	"github.com/feichai0017/concept-graph/internal/repository"
	"github.com/feichai0017/concept-graph/internal/service/ingestion"
	"github.com/feichai0017/concept-graph/internal/service/subject"
	"github.com/feichai0017/concept-graph/pkg/cache"
	"github.com/feichai0017/concept-graph/pkg/logger"
	"github.com/feichai0017/concept-graph/pkg/queue"
	"github.com/feichai0017/concept-graph/pkg/storage"
)

// processTimeout caps a single ingestion attempt end to end.
const processTimeout = 30 * time.Minute

// App holds every shared dependency, wired once per process.
type App struct {
	Repo      *repository.Repository
	Queue     queue.Queue
	Storage   storage.Storage
	Cache     *cache.Cache
	Ingestion ingestion.Service
	Subjects  subject.Service
	Logger    logger.Logger
}

func New(log logger.Logger) (*App, error) {
	// 数据库
	db, err := repository.NewDatabase(config.GetDatabaseConfig().DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	repo := repository.New(db, log)

	// 队列
	redisCfg := config.GetRedisConfig()
	pipeCfg := config.GetPipelineConfig()
	q, err := queue.NewAsynqQueue(&queue.Config{
		RedisAddr:          redisCfg.Addr,
		RedisPassword:      redisCfg.Password,
		RedisDB:            redisCfg.DB,
		MaxRetries:         pipeCfg.MaxRetries,
		RetryBase:          pipeCfg.RetryBase,
		ProcessTimeout:     processTimeout,
		CompletedRetention: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}

	// 对象存储
	store, err := storage.NewStorage(storage.StorageType(config.GetStorageConfig().Type), log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// 缓存降级可用
	c := cache.New(&cache.Config{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}, log)

	// AI 提供方链
	provider, err := buildProvider(log)
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(
		rate.Limit(float64(pipeCfg.RateLimit)/pipeCfg.RateWindow.Seconds()),
		pipeCfg.RateLimit,
	)
	extractor := pipeline.NewExtractor(provider, limiter, log)

	ingestSvc := ingestion.NewService(repo, q, store, extractor, c, log, &ingestion.ServiceConfig{
		MaxFileSize:     50 * 1024 * 1024, // 50MB
		AllowedTypes:    []string{".pdf", ".txt", ".md"},
		QueuePriority:   2,
		MaxChunkSize:    pipeCfg.MaxChunkSize,
		MinChunkSize:    pipeCfg.MinChunkSize,
		BatchSize:       pipeCfg.BatchSize,
		BatchPause:      pipeCfg.BatchPause,
		RetentionPeriod: 7 * 24 * time.Hour,
	})

	return &App{
		Repo:      repo,
		Queue:     q,
		Storage:   store,
		Cache:     c,
		Ingestion: ingestSvc,
		Subjects:  subject.NewService(repo, c, log),
		Logger:    log,
	}, nil
}

// buildProvider chains the configured model providers, primary first.
func buildProvider(log logger.Logger) (ai.Provider, error) {
	aiCfg := config.GetAIConfig()

	var providers []ai.Provider
	if aiCfg.GeminiAPIKey != "" {
		providers = append(providers, ai.NewGeminiProvider(aiCfg.GeminiAPIKey, aiCfg.GeminiModel, aiCfg.RequestTimeout))
	}
	if aiCfg.GroqAPIKey != "" {
		providers = append(providers, ai.NewGroqProvider(aiCfg.GroqAPIKey, aiCfg.GroqModel, aiCfg.RequestTimeout))
	}

	return ai.Fallback(log, providers...)
}

func (a *App) Close() {
	if err := a.Queue.Close(); err != nil {
		a.Logger.Error("Failed to close queue", logger.Error(err))
	}
	if err := a.Cache.Close(); err != nil {
		a.Logger.Error("Failed to close cache", logger.Error(err))
	}
}
