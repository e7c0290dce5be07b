package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/auth"
	"leadboard_backend/internal/events"
	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/internal/http/router"
	"leadboard_backend/internal/leads"
	"leadboard_backend/internal/leads/changefeed"
	"leadboard_backend/internal/leads/lifecycle"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/internal/scheduler"
	"leadboard_backend/platform/config"
	"leadboard_backend/platform/db"
	"leadboard_backend/platform/errorreport"
	"leadboard_backend/platform/logger"
	"leadboard_backend/platform/metrics"
	"leadboard_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errorReporting, flushReports, err := errorreport.Init(cfg)
	if err != nil {
		log.Warn("failed to initialize sentry; error reporting disabled", "error", err)
	}
	defer flushReports()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.IsMigrationsEnabled() {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Change hub fed by Postgres LISTEN/NOTIFY and in-process writes
	hub := changefeed.NewHub()
	listener := changefeed.NewListener(pool, hub, log, appMetrics.ChangeSignals.Inc)
	go listener.Run(ctx)

	cleanupScheduler, closeScheduler := initCleanupScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	guard, closeGuard := initTransitionGuard(cfg, log)
	if closeGuard != nil {
		defer closeGuard()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	storageSvc := initStorage(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsDeps := leads.Deps{
		Repo:           repository.New(pool),
		Hub:            hub,
		EventBus:       eventBus,
		Validator:      val,
		Logger:         log,
		Metrics:        appMetrics,
		Guard:          guard,
		DefaultCountry: cfg.GetDefaultCountry(),
		Bucket:         cfg.GetMinioBucketEvidence(),
	}
	if storageSvc != nil {
		leadsDeps.Storage = storageSvc
	}
	leadsModule, err := leads.NewModule(leadsDeps)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	var cleanup leads.ImageCleanupScheduler
	if cleanupScheduler != nil {
		cleanup = cleanupScheduler
	}
	leadsModule.RegisterHandlers(eventBus, cleanup)

	authModule := auth.NewModule()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Metrics: appMetrics,

		ErrorReporting: errorReporting,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initStorage returns nil when MinIO is not configured; uploads then answer 503.
func initStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) *storage.MinIOService {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; image uploads disabled")
		return nil
	}

	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}

	bucket := cfg.GetMinioBucketEvidence()
	if err := withRetry(ctx, log, "ensure evidence bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "evidenceBucket", bucket)
	return storageSvc
}

func initCleanupScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; image cleanup after delete disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize cleanup scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initTransitionGuard uses Redis when available so several API instances
// share one in-flight guard; otherwise the guard is process-local.
func initTransitionGuard(cfg *config.Config, log *logger.Logger) (lifecycle.InFlightGuard, func()) {
	if cfg.GetRedisURL() == "" {
		return lifecycle.NewMemoryGuard(), nil
	}

	opt, err := scheduler.RedisOptions(cfg)
	if err != nil {
		log.Error("invalid REDIS_URL; falling back to in-process transition guard", "error", err)
		return lifecycle.NewMemoryGuard(), nil
	}

	client := redis.NewClient(opt)
	log.Info("transition guard backed by redis", "ttl", cfg.GetTransitionLockTTL())
	return lifecycle.NewRedisGuard(client, cfg.GetTransitionLockTTL()), func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
