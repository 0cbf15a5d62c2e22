// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/zokybot/zoky-messenger-go/internal/bot"
	"github.com/zokybot/zoky-messenger-go/internal/buildinfo"
	"github.com/zokybot/zoky-messenger-go/internal/config"
	"github.com/zokybot/zoky-messenger-go/internal/logger"
	"github.com/zokybot/zoky-messenger-go/internal/messenger"
	"github.com/zokybot/zoky-messenger-go/internal/metrics"
	"github.com/zokybot/zoky-messenger-go/internal/search"
	"github.com/zokybot/zoky-messenger-go/internal/sentry"
	"github.com/zokybot/zoky-messenger-go/internal/session"
	"github.com/zokybot/zoky-messenger-go/internal/storage"
	"github.com/zokybot/zoky-messenger-go/internal/webhook"
)

const greeting = "Zoky says Hi..."

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *storage.DB
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	sessions       *session.Store
	webhookHandler *webhook.Handler
	router         *gin.Engine
	server         *http.Server
	scheduler      *cron.Cron
	jobCtx         context.Context
	stopJobs       context.CancelFunc
	wg             sync.WaitGroup // Track background goroutines for graceful shutdown
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	var logOpts logger.Options
	if cfg.HasBetterStack() {
		logOpts.BetterStackToken = cfg.BetterStackToken
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logOpts)

	log = log.WithField("service", "zoky-messenger")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context() calls go through the same handler chain.
	slog.SetDefault(log.Logger)

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		SampleRate:  cfg.SentrySampleRate,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error reporting disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	return build(ctx, cfg, log)
}

// build wires every component. It is separate from Initialize so tests can
// supply their own logger.
func build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	log.WithField("release", buildinfo.Release()).Info("Initializing application...")

	db, err := storage.New(ctx, cfg.SQLitePath(), cfg.SearchCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).WithField("cache_ttl", cfg.SearchCacheTTL).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)
	m.TrackLogDropped(log.Dropped)

	sessions := session.NewStore(cfg.SessionTTL)

	sender := messenger.NewClient(messenger.ClientConfig{
		BaseURL:     cfg.GraphAPIBaseURL,
		AccessToken: cfg.PageAccessToken,
		Timeout:     cfg.SendTimeout,
		Metrics:     m,
		Logger:      log,
	})

	searcher := search.NewClient(search.Config{
		Endpoints: search.EndpointsFromConfig(cfg.Search),
		Timeout:   cfg.SearchTimeout,
		Cache:     db,
		Metrics:   m,
		Logger:    log,
	})

	botHandler := bot.NewHandler(bot.HandlerConfig{
		Searcher: searcher,
		Sender:   sender,
		Sessions: sessions,
		Logger:   log,
	})

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		VerifyToken: cfg.VerifyToken,
		Events:      botHandler,
		Metrics:     m,
		Logger:      log,
	},
		webhook.WithAppSecret(cfg.AppSecret),
		webhook.WithProcessingTimeout(config.WebhookProcessing),
	)
	if cfg.AppSecret == "" {
		log.Warn("App secret not configured, webhook signatures are not verified")
	}

	jobCtx, stopJobs := context.WithCancel(context.Background())
	app := &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		metrics:        m,
		registry:       registry,
		sessions:       sessions,
		webhookHandler: webhookHandler,
		jobCtx:         jobCtx,
		stopJobs:       stopJobs,
	}

	app.router = app.newRouter()
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	scheduler, err := app.newScheduler()
	if err != nil {
		stopJobs()
		_ = db.Close()
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	app.scheduler = scheduler

	log.Info("Initialization complete")
	return app, nil
}

func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.root)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/webhook", a.webhookHandler.Verify)
	router.POST("/webhook", a.webhookHandler.Receive)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled, a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

func (a *Application) root(c *gin.Context) {
	c.String(http.StatusOK, greeting)
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "alive",
		"release": buildinfo.Release(),
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	stats := gin.H{"sessions": a.sessions.Len()}
	if count, err := a.db.CountSearchResults(ctx); err == nil {
		stats["search_cache"] = count
	} else {
		a.logger.WithError(err).Warn("Failed to count search cache in readiness stats")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"cache":    stats,
	})
}

// Run starts the HTTP server and background jobs, then blocks until
// SIGINT/SIGTERM and shuts down gracefully.
func (a *Application) Run() error {
	a.scheduler.Start()
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	return a.shutdown()
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	a.wg.Go(func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	})
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops intake first, then drains work, then closes resources:
//  1. Stop accepting HTTP requests and wait for in-flight ones
//  2. Wait for acknowledged webhook batches to finish sending
//  3. Stop cron jobs and wait for a running job
//  4. Close the database, flush Sentry and the log sink
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}
	a.wg.Wait()

	a.logger.Info("Waiting for webhook events to complete...")
	if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
	}

	a.stopJobs()
	select {
	case <-a.scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		a.logger.Warn("Background job did not stop before shutdown timeout")
	}

	a.logger.Info("Closing resources...")
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Warn("Logger shutdown timed out")
	}
	if dropped := a.logger.Dropped(); dropped > 0 {
		a.logger.WithField("dropped", dropped).Warn("Remote log sink dropped records")
	}
	return nil
}
