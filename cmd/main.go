package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospitalhub/internal/api"
	"hospitalhub/internal/cache"
	"hospitalhub/internal/config"
	"hospitalhub/internal/database"
	"hospitalhub/internal/logger"
	"hospitalhub/internal/metrics"
	"hospitalhub/internal/models/providers"
	"hospitalhub/internal/recommender"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort > 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	zerolog.SetGlobalLevel(log.GetLevel())
	gin.SetMode(gin.ReleaseMode)

	collector := metrics.NewCollector()

	provider, err := initializeProvider(cfg.AI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize model provider")
	}
	if provider == nil {
		log.Warn().Msg("model path disabled, serving rule-based recommendations only")
	} else {
		log.Info().Str("provider", provider.Name()).Str("model", cfg.AI.Model).Msg("model provider ready")
	}

	engine := recommender.NewEngine(provider,
		recommender.WithModel(cfg.AI.Model),
		recommender.WithTemperature(cfg.AI.Temperature),
		recommender.WithTimeout(cfg.AI.Timeout()),
		recommender.WithLogger(log.With().Str("component", "recommender").Logger()),
		recommender.WithMetrics(collector),
	)

	store, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	rc, err := cache.New(cache.Config{
		Backend:  cfg.Cache.Backend,
		TTL:      cfg.AI.CacheTTL(),
		RedisURL: cfg.Cache.RedisURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize recommendation cache")
	}

	server := api.NewServer(api.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}, engine, store, rc, collector, log)
	if cfg.Auth.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, tenant is read from the X-Hospital header")
	}

	if cfg.Server.MetricsPort > 0 {
		go startMetricsServer(cfg.Server.MetricsPort, collector, log)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("API server shutdown error")
		}
	}()

	log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("API server error")
	}
}

func initializeProvider(cfg config.AIConfig) (providers.Provider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	provider, err := providers.New(providers.Config{
		Type:       providers.ProviderType(cfg.Provider),
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		APIVersion: cfg.APIVersion,
	})
	if errors.Is(err, providers.ErrNoCredential) {
		return nil, nil
	}
	return provider, err
}

func startMetricsServer(port int, collector *metrics.Collector, log zerolog.Logger) {
	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", gin.WrapH(collector.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Info().Int("port", port).Msg("starting metrics server")
	if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server error")
	}
}
