package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"lifelens-island/internal/api"
	authapp "lifelens-island/internal/app/auth"
	"lifelens-island/internal/app/content"
	"lifelens-island/internal/app/game"
	"lifelens-island/internal/app/savings"
	"lifelens-island/internal/app/storage"
	"lifelens-island/internal/platform/cache"
	"lifelens-island/internal/platform/config"
	"lifelens-island/internal/platform/db"
	"lifelens-island/internal/platform/migrate"
	"lifelens-island/internal/platform/mq"
	"lifelens-island/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.NewLogger(cfg.Env, cfg.LogLevel)

	kv, ready, closeStore, err := openStore(ctx, logger, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store initialisation failed")
	}
	defer closeStore()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	switch {
	case errors.Is(err, cache.ErrDisabled):
	case err != nil:
		logger.Warn().Err(err).Msg("redis unavailable; continuing without cache")
	default:
		defer redisClient.Close()
		kv = storage.NewCachedKV(logger, kv, redisClient, cfg.StateCacheTTL)
	}

	publisher, err := mq.NewPublisher(cfg.NATSURL)
	if err != nil {
		if !errors.Is(err, mq.ErrDisabled) {
			logger.Warn().Err(err).Msg("nats unavailable; using noop publisher")
		}
		publisher = mq.NewNoopPublisher()
	}
	defer publisher.Close()

	provider, closeProvider := openProvider(ctx, logger, cfg)
	defer closeProvider()

	loc, _ := time.LoadLocation(cfg.TimeZone)
	opts := []game.Option{game.WithLocation(loc)}
	if cfg.RandSeed != 0 {
		opts = append(opts, game.WithRandSeed(cfg.RandSeed))
	}

	authSvc := authapp.NewService(cfg.JWTSecret, cfg.JWTTTL)
	savingsSvc := savings.NewService(logger, kv, publisher)
	gameSvc := game.NewService(
		logger,
		game.NewKVStore(kv),
		savingsSvc,
		timeoutProvider{inner: provider, timeout: cfg.ProviderTimout},
		publisher,
		game.RealScheduler{},
		game.LoadWorldMap(logger, cfg.WorldMapFile),
		rulesFromConfig(cfg),
		opts...,
	)
	defer gameSvc.Shutdown()

	handler := api.NewHandler(logger, authSvc, gameSvc, savingsSvc, ready, cfg.CorsOrigin, cfg.MaxRequestBody)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, logger zerolog.Logger, cfg config.Config) (storage.KV, func(context.Context) error, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		pg, err := db.Connect(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := migrate.Up(ctx, pg, migrate.Embedded()); err != nil {
			pg.Close()
			return nil, nil, nil, err
		}
		ready := func(ctx context.Context) error { return db.Ping(ctx, pg) }
		return storage.NewPostgresKV(pg), ready, pg.Close, nil
	case "sqlite":
		s, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		return s, nil, func() { _ = s.Close() }, nil
	default:
		logger.Warn().Msg("using in-memory store; progress is lost on restart")
		return storage.NewMemoryKV(), nil, func() {}, nil
	}
}

// openProvider serves generated quests from Gemini when a key is configured,
// with the curated pool as fallback.
func openProvider(ctx context.Context, logger zerolog.Logger, cfg config.Config) (content.Provider, func()) {
	pool, err := content.LoadPool(cfg.QuestPoolFile)
	if err != nil {
		logger.Warn().Err(err).Str("pool_file", cfg.QuestPoolFile).Msg("quest pool unavailable")
	}
	poolProvider := content.NewPoolProvider(pool, cfg.RandSeed)
	if cfg.GeminiAPIKey == "" {
		return poolProvider, func() {}
	}
	client, model, err := content.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn().Err(err).Msg("gemini unavailable; using quest pool only")
		return poolProvider, func() {}
	}
	return content.NewFallbackProvider(logger, content.NewGeminiProvider(model), poolProvider), func() { _ = client.Close() }
}

func rulesFromConfig(cfg config.Config) game.Rules {
	r := game.DefaultRules()
	r.ReadingSeconds = cfg.ReadingSeconds
	r.AnsweringSeconds = cfg.AnsweringSeconds
	r.DecisionFeedbackDelay = cfg.DecisionFeedbackDelay
	r.DailyGenerationLimit = cfg.DailyGenerationLimit
	r.CooldownThreshold = cfg.CooldownThreshold
	r.CooldownDuration = cfg.CooldownDuration
	r.HangmanMaxWrong = cfg.HangmanMaxWrong
	r.HangmanPenalty = cfg.HangmanPenalty
	r.ConversionRate = cfg.ConversionRate
	r.BonusRevealCount = cfg.BonusRevealCount
	r.GeneratedRiddleReward = cfg.GeneratedRiddleReward
	r.GeneratedDecisionReward = cfg.GeneratedDecisionReward
	r.GeneratedRevealCells = cfg.GeneratedRevealCells
	return r
}

type timeoutProvider struct {
	inner   content.Provider
	timeout time.Duration
}

func (p timeoutProvider) GenerateRiddle(ctx context.Context, exclude []string) (content.Riddle, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.inner.GenerateRiddle(ctx, exclude)
}

func (p timeoutProvider) GenerateDecisionScenario(ctx context.Context, exclude []string) (content.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.inner.GenerateDecisionScenario(ctx, exclude)
}

func (p timeoutProvider) GenerateHint(ctx context.Context, word string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.inner.GenerateHint(ctx, word)
}
