// Package app wires the configured components into a runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	httpadapter "resume-matcher/internal/adapter/http"
	"resume-matcher/internal/adapter/repository"
	"resume-matcher/internal/adapter/session"
	"resume-matcher/internal/adapter/storage"
	"resume-matcher/internal/config"
	"resume-matcher/internal/explain"
	"resume-matcher/internal/keywords"
	"resume-matcher/internal/matcher"
	"resume-matcher/internal/metrics"
	"resume-matcher/internal/textextract"
	"resume-matcher/internal/usecase"
	"resume-matcher/pkg/ai"
	infra "resume-matcher/pkg/infrastructure"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// embeddingCacheTTL keeps phrase vectors for a week; they only change
// when the embedding model does, and the model name is part of the key.
const embeddingCacheTTL = 7 * 24 * time.Hour

// Store is a persistence backend with its own schema management.
type Store interface {
	usecase.Store
	Migrate(ctx context.Context, logger *zap.Logger) error
	Close() error
}

// OpenStore connects to the configured database. The schema is not touched.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := infra.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return repository.NewPostgresRepo(pool), nil
	case config.DriverSQLite:
		repo, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

// OpenRedis returns nil when Redis is not configured.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	return infra.NewRedis(ctx, cfg.Address, cfg.Password, cfg.DB)
}

// NewAnalyzer builds the resume analysis pipeline. Without a Gemini key the
// hashing embedder is used and feedback reports that it is not configured.
func NewAnalyzer(ctx context.Context, cfg *config.Config, rdb redis.UniversalClient, logger *zap.Logger) (*usecase.Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	key, err := cfg.GeminiAPIKey()
	if err != nil {
		return nil, err
	}

	var client *ai.Client
	if key != "" {
		client, err = ai.NewClient(ctx, ai.Options{
			APIKey:         key,
			Model:          cfg.AI.Gemini.Model,
			EmbeddingModel: cfg.AI.Gemini.EmbeddingModel,
			MaxRetries:     cfg.AI.Gemini.MaxRetries,
			Timeout:        cfg.AI.Gemini.Timeout,
		}, logger.Named("gemini"))
		if err != nil {
			return nil, err
		}
	}

	embedder, err := newEmbedder(cfg.Embedding.Provider, client, rdb, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("embedder selected", zap.String("embedder", embedder.Name()), zap.Bool("cached", rdb != nil))

	extractor := keywords.NewExtractor(embedder, logger.Named("keywords"))
	m := matcher.New(extractor, embedder, logger.Named("matcher"))

	feedback := ai.NewFeedback(nil, logger.Named("feedback"))
	if client != nil {
		feedback = ai.NewFeedback(client, logger.Named("feedback"))
	}
	feedback.WithObserver(metrics.ObserveFeedback)

	var explainer usecase.Explainer
	if cfg.Explain.Enabled {
		renderer := infra.NewChromedpRenderer(cfg.Explain.ChromePath, cfg.Explain.Timeout)
		explainer = explain.New(renderer, explain.Options{
			Samples: cfg.Explain.Samples,
			Seed:    cfg.Explain.Seed,
		}, logger.Named("explain"))
	}

	return usecase.NewAnalyzer(textextract.Extract, extractor, m, feedback, explainer, logger.Named("analyzer")), nil
}

func newEmbedder(provider string, client *ai.Client, rdb redis.UniversalClient, logger *zap.Logger) (ai.NamedEmbedder, error) {
	switch provider {
	case config.EmbeddingGemini:
		if client == nil {
			return nil, errors.New("embedding.provider gemini needs a Gemini API key")
		}
	case config.EmbeddingHashing:
		client = nil
	case config.EmbeddingAuto:
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}

	if client == nil {
		return ai.NewHashingEmbedder(ai.DefaultHashingDims), nil
	}
	var e ai.NamedEmbedder = ai.NewGeminiEmbedder(client)
	if rdb != nil {
		e = ai.NewCachedEmbedder(e, rdb, embeddingCacheTTL, logger.Named("embedding-cache"))
	}
	return e, nil
}

// App holds every long-lived component of a running server.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Store  Store
	Redis  *redis.Client
	HTTP   *fiber.App
}

// Build opens the store, runs migrations and assembles the HTTP server.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := OpenStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.Store = store
	if err := store.Migrate(ctx, logger.Named("migration")); err != nil {
		a.Close()
		return nil, err
	}

	if a.Redis, err = OpenRedis(ctx, cfg.Redis); err != nil {
		a.Close()
		return nil, err
	}

	files, err := storage.NewFiles(cfg.Server.UploadDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	var rdb redis.UniversalClient
	var sessionStorage fiber.Storage
	if a.Redis != nil {
		rdb = a.Redis
		sessionStorage = session.NewRedisStorage(a.Redis)
	}

	analyzer, err := NewAnalyzer(ctx, cfg, rdb, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	h := httpadapter.NewHandler(
		usecase.NewAccounts(store),
		usecase.NewRecruiting(store, files, analyzer, logger.Named("recruiting")),
		files,
		httpadapter.NewSessionStore(sessionStorage),
		cfg.Server.PublicURL,
		logger.Named("http"),
	)
	a.HTTP = httpadapter.NewApp(h, httpadapter.AppConfig{
		BodyLimitMB:   cfg.Server.BodyLimitMB,
		SessionSecret: cfg.Server.SessionSecret,
	}, logger.Named("http"))
	return a, nil
}

// Close releases the store and the Redis connection.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
