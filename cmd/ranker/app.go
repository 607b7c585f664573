package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/internal/adapters/config"
	"github.com/selivandex/catalog-ranker/internal/adapters/database"
	metricsAdapter "github.com/selivandex/catalog-ranker/internal/adapters/metrics"
	redisAdapter "github.com/selivandex/catalog-ranker/internal/adapters/redis"
	"github.com/selivandex/catalog-ranker/internal/insights"
	"github.com/selivandex/catalog-ranker/internal/keywords"
	"github.com/selivandex/catalog-ranker/internal/ranker"
	"github.com/selivandex/catalog-ranker/internal/scoring"
	"github.com/selivandex/catalog-ranker/internal/sentiment"
	"github.com/selivandex/catalog-ranker/pkg/logger"
	"github.com/selivandex/catalog-ranker/pkg/metrics"
)

// app holds every initialized component of one process
type app struct {
	cfg       *config.Config
	db        *database.DB
	redis     *redisAdapter.Client
	analytics *metricsAdapter.ClickHouseRepository
	buffer    *metrics.BufferedMetrics
	scores    *scoring.Repository
	cache     *scoring.Cache
	service   *ranker.Service
}

// initConfig loads configuration and initializes logger
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initApp connects to the store and the optional Redis and ClickHouse
// backends and assembles the ranker service. Optional backends that fail to
// connect are logged and skipped.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	db, err := initDatabase(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, db: db}

	cacheOpts := []scoring.CacheOption{scoring.WithFreshnessWindow(cfg.Scoring.FreshnessWindow)}
	var aggregatorOpts []insights.Option

	if cfg.Redis.Enabled {
		client, err := redisAdapter.New(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn("redis not available, score locks are process-local", zap.Error(err))
		} else {
			a.redis = client
			cacheOpts = append(cacheOpts, scoring.WithLockFactory(client.LockFactory()))
		}
	}

	if cfg.ClickHouse.Enabled {
		repo, err := metricsAdapter.OpenClickHouse(ctx, &cfg.ClickHouse)
		if err != nil {
			logger.Warn("clickhouse not available, score history disabled", zap.Error(err))
		} else {
			a.analytics = repo
			a.buffer = metrics.NewBufferedMetrics(metrics.BufferConfig{
				Writer:        metricsAdapter.NewWriter(repo),
				BatchSize:     cfg.ClickHouse.BatchSize,
				FlushInterval: cfg.ClickHouse.FlushInterval,
				MaxBufferSize: cfg.ClickHouse.BatchSize * 20,
			})
			cacheOpts = append(cacheOpts, scoring.WithRecorder(a.buffer))
			aggregatorOpts = append(aggregatorOpts, insights.WithRecorder(a.buffer))
		}
	}

	lexicon, err := sentiment.LoadLexicon(cfg.Lexicon.PositivePath, cfg.Lexicon.NegativePath)
	if err != nil {
		logger.Warn("sentiment lexicon incomplete, affected side scores nothing", zap.Error(err))
	}

	extractor := keywords.NewExtractor()
	a.scores = scoring.NewRepository(db.DB())
	a.cache = scoring.NewCache(a.scores, cacheOpts...)

	insightRepo := insights.NewRepository(db.DB())
	a.service = ranker.NewService(
		sentiment.NewAnalyzer(lexicon),
		extractor,
		a.cache,
		insights.NewAggregator(insightRepo, extractor, aggregatorOpts...),
		a.scores,
		insightRepo,
	)

	return a, nil
}

// initDatabase opens the configured store and brings its schema up to date
func initDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// close flushes pending analytics and closes connections. The buffer owns
// the ClickHouse connection.
func (a *app) close() {
	if a.buffer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.buffer.Close(ctx); err != nil {
			logger.Error("failed to flush score history", zap.Error(err))
		}
		cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Error("failed to close redis", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		logger.Error("failed to close database", zap.Error(err))
	}
	logger.Sync()
}
