package commands

import (
	"fmt"

	"github.com/wonny/argus/v1/internal/outcome"
	"github.com/wonny/argus/v1/internal/playbook"
	"github.com/wonny/argus/v1/internal/snapshot"
	"github.com/wonny/argus/v1/internal/suppliers"
	"github.com/wonny/argus/v1/pkg/config"
	"github.com/wonny/argus/v1/pkg/database"
	"github.com/wonny/argus/v1/pkg/logger"
	"github.com/wonny/argus/v1/pkg/redis"
)

// app bundles the wired engine for the commands.
// ⭐ SSOT: 의존성 조립은 여기서만
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	builder *snapshot.Builder
	runner  *outcome.Runner
}

// initApp wires config → stores → suppliers → engine. The returned
// cleanup closes every connection.
func initApp() (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	var cache *redis.Cache
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "argus:snapshot")
	}

	registry := playbook.NewRegistry()
	if path := cfg.Engine.PlaybookConfigPath; path != "" {
		hash, err := registry.LoadOverrides(path)
		if err != nil {
			db.Close()
			redisClient.Close()
			return nil, nil, fmt.Errorf("load playbook overrides: %w", err)
		}
		log.WithFields(map[string]interface{}{
			"path": path,
			"hash": hash,
		}).Info("Playbook overrides loaded")
	}

	candles := suppliers.NewRateLimitedCandles(
		suppliers.NewCandleSupplier(db),
		cfg.Engine.SupplierRateLimit,
		cfg.Engine.SupplierBurst,
	)

	builder := snapshot.NewBuilder(
		suppliers.NewAssetUniverse(db),
		candles,
		suppliers.NewEventSupplier(db),
		suppliers.NewBiasSupplier(db),
		suppliers.NewSentimentSupplier(db),
		registry,
		snapshot.NewRepository(db),
		cache,
		snapshot.NewMemoryLockStore(cfg.Engine.BuildLockTTL),
		cfg.Engine,
		log,
	)

	runner := outcome.NewRunner(
		snapshot.NewRepository(db),
		outcome.NewRepository(db),
		candles,
		registry,
		cfg.Engine.OutcomeWindows,
		cfg.Engine.Version,
		log,
	)

	cleanup := func() {
		redisClient.Close()
		db.Close()
	}
	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		redis:   redisClient,
		builder: builder,
		runner:  runner,
	}, cleanup, nil
}
