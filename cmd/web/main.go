package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"btq-insights/internal/config"
	"btq-insights/internal/middleware"
	"btq-insights/internal/observability"
	"btq-insights/internal/server"
	"btq-insights/internal/services"
	"btq-insights/internal/store"
	"btq-insights/internal/ui/templates"
)

const (
	renderTimeout    = 10 * time.Second
	dataLoadTimeout  = 60 * time.Second
	limiterSweep     = time.Minute
	dashboardCaching = "no-cache"
)

// dashboardHandler renders the page with the current filter options.
func dashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		filters := analytics.Filters()
		topItems, topOutlets := analytics.Defaults()

		w.Header().Set("Cache-Control", dashboardCaching)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := templates.Dashboard(templates.DashboardOptions{
			Regions:    filters.Regions,
			Categories: filters.Categories,
			TopItems:   topItems,
			TopOutlets: topOutlets,
		}).Render(ctx, w)
		if err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, analytics *services.Analytics, metrics *observability.Metrics, limiter *middleware.RateLimiter, logger *slog.Logger) http.Handler {
	srv := server.NewServer(analytics, logger, &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics),
		Metrics:   metrics.Handler(),
	})

	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.Metrics(metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(limiter, logger),
	)
	return chain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", observability.ServiceVersion,
		"addr", cfg.Address(),
		"data_file", cfg.Data.File,
		"reload_schedule", cfg.Data.ReloadSchedule,
	)

	shutdownTracing, err := observability.InitTracing(cfg.Tracing)
	if err != nil {
		logger.Error("failed to initialise tracing", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	loader := store.NewLoader(store.Options{Sheet: cfg.Data.Sheet, CacheDir: cfg.Data.CacheDir}, logger)
	analytics := services.NewAnalytics(loader, cfg.Data.File, cfg.Engine, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), dataLoadTimeout)
	start := time.Now()
	err = analytics.Load(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to load transaction data", "error", err)
		os.Exit(1)
	}
	logger.Info("transaction data loaded", "duration", time.Since(start))

	refresher, err := services.NewRefresher(analytics, cfg.Data.ReloadSchedule, logger)
	if err != nil {
		logger.Error("failed to schedule reloads", "error", err)
		os.Exit(1)
	}

	limiter := middleware.NewRateLimiter(cfg.Security)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go limiter.Run(sweepCtx, limiterSweep)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, metrics, limiter, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	if refresher != nil {
		refresher.Start()
		gracefulServer.RegisterShutdownHook(refresher.Stop)
	}
	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		stopSweep()
		return nil
	})
	gracefulServer.RegisterShutdownHook(shutdownTracing)

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
