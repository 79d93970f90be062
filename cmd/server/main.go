package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"aitools.app/recommender/common/id"
	"aitools.app/recommender/common/llm"
	"aitools.app/recommender/common/logger"
	"aitools.app/recommender/common/otel"
	"aitools.app/recommender/core/config"
	"aitools.app/recommender/internal/dataset"
	"aitools.app/recommender/internal/http/middleware"
	httprouter "aitools.app/recommender/internal/http/router"
	"aitools.app/recommender/internal/metrics"
	"aitools.app/recommender/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "recommender starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	if cfg.Dataset.SourceURL == "" {
		slog.WarnContext(ctx, "DATA_URL not set, /datos and /consulta will fail until configured")
	}
	cache := dataset.NewCache(dataset.Options{
		SourceURL:    cfg.Dataset.SourceURL,
		TTL:          cfg.Dataset.CacheTTL,
		FetchTimeout: cfg.Dataset.FetchTimeout,
		Metrics:      appMetrics,
	})

	var llmClient llm.Client
	if cfg.LLM.Enabled() {
		llmClient, err = llm.New(llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
			Headers: map[string]string{
				"HTTP-Referer": cfg.LLM.Referer,
				"X-Title":      cfg.LLM.Title,
			},
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create llm client", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "llm client configured", "model", llmClient.Model(), "base_url", cfg.LLM.BaseURL)
	} else {
		slog.WarnContext(ctx, "OPENROUTER_API_KEY not set, /consulta will fail until configured")
	}

	services := service.NewServices(service.ServicesConfig{
		Datasets: cache,
		LLM:      llmClient,
		LLMCfg:   cfg.LLM,
		Metrics:  appMetrics,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := setupRouter(cfg, services, registry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to set up router", "error", err)
		os.Exit(1)
	}

	// The LLM call alone may take LLM_TIMEOUT_SECONDS, after the dataset fetch.
	writeTimeout := cfg.LLM.Timeout + cfg.Dataset.FetchTimeout + 10*time.Second
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, gatherer prometheus.Gatherer) (*gin.Engine, error) {
	router := gin.New()

	cors, err := middleware.CORS(cfg.CORS)
	if err != nil {
		return nil, err
	}

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(cors)

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Gatherer: gatherer,
	})

	return router, nil
}
