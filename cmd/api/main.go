package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/danadoen/nusaai/internal/adapter/repo"
	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/generation"
	"github.com/danadoen/nusaai/internal/http/handlers"
	httpapi "github.com/danadoen/nusaai/internal/http/httpapi"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/infra/credentials"
	"github.com/danadoen/nusaai/internal/infra/geoip"
	"github.com/danadoen/nusaai/internal/infra/metrics"
	"github.com/danadoen/nusaai/internal/infra/trial"
	"github.com/danadoen/nusaai/internal/middleware"
	"github.com/danadoen/nusaai/internal/providers/genai"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	runner := infra.NewSQLRunner(dbpool, logger)
	profiles := repo.NewProfileRepository(runner)
	history := repo.NewHistoryRepository(runner)
	keyStore := credentials.NewStore(runner)
	rec := metrics.NewRecorder(prometheus.DefaultRegisterer)

	var trials generation.TrialStore
	if cfg.RedisURL != "" {
		redisStore, err := trial.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisStore.Close()
		trials = redisStore
	} else {
		logger.Warn().Msg("REDIS_URL not set, guest trials are kept in memory")
		trials = trial.NewMemoryStore()
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		lookup = resolver.CountryCode
		if closer, ok := resolver.(io.Closer); ok {
			defer closer.Close()
		}
	}

	masterKeys := generation.NewMasterKeySource(keyStore, cfg.MasterKeyCacheTTL)
	sources := []generation.KeySource{generation.NewPersonalKeySource(keyStore), masterKeys}
	if cfg.GeminiAPIKey != "" {
		sources = append(sources, generation.NewStaticKeySource("env", cfg.GeminiAPIKey))
	}

	invoker := generation.NewInvoker(generation.InvokerDeps{
		Gate:       generation.NewGate(profiles, trials, rec, logger),
		Keys:       generation.NewKeyResolver(rec, logger, sources...),
		Accountant: generation.NewAccountant(profiles, trials, rec),
		Backend: genai.NewClient(genai.Options{
			BaseURL: cfg.GeminiBaseURL,
			Timeout: cfg.GeminiTimeout,
			Logger:  &logger,
		}),
		Models: generation.Models{
			Text:        cfg.GeminiModel,
			Image:       cfg.GeminiImageModel,
			AspectRatio: cfg.GeminiImageAspectRatio,
		},
		Metrics: rec,
		Logger:  logger,
	})

	app := &handlers.App{
		Logger:      logger,
		Profiles:    profiles,
		History:     history,
		Keys:        keyStore,
		MasterCache: masterKeys,
		Generator:   invoker,
		Ready: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return dbpool.Ping(pingCtx)
		},
	}

	locale, ok := domain.ParseLanguage(cfg.DefaultLocale)
	if !ok {
		locale = domain.LanguageEnglish
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		Verifier:       middleware.NewTokenVerifier(cfg.JWTSecret, cfg.JWTAudience),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit:      cfg.RateLimitPerMin,
		DefaultLocale:  locale,
		CountryLookup:  lookup,
		SecureCookies:  !cfg.IsDevelopment(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().
			Str("addr", server.Addr()).
			Str("text_model", cfg.GeminiModel).
			Str("image_model", cfg.GeminiImageModel).
			Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
