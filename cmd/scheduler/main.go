package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/internal/leads/repository"
	"leadboard_backend/internal/scheduler"
	"leadboard_backend/platform/config"
	"leadboard_backend/platform/db"
	"leadboard_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	var remover scheduler.ObjectRemover
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure evidence bucket", 5, 2*time.Second, func() error {
			return storageSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketEvidence())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err)
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		remover = storageSvc

		sweeper := scheduler.NewOrphanSweeper(storageSvc, repository.New(pool), cfg.GetMinioBucketEvidence(), cfg.GetOrphanGracePeriod(), log)
		maintenance := scheduler.NewCron(log)
		if err := maintenance.AddOrphanSweep(cfg.GetOrphanSweepSchedule(), sweeper); err != nil {
			log.Error("invalid ORPHAN_SWEEP_SCHEDULE", "error", err)
			panic("invalid ORPHAN_SWEEP_SCHEDULE: " + err.Error())
		}
		go maintenance.Run(ctx)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; cleanup tasks will be acknowledged without deleting")
	}

	worker, err := scheduler.NewWorker(cfg, remover, cfg.GetMinioBucketEvidence(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
