package scheduler

import (
	"context"
	"errors"
	"fmt"

	"leadboard_backend/platform/config"
	"leadboard_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// ObjectRemover is the part of the storage adapter the cleanup job needs.
type ObjectRemover interface {
	DeleteObject(ctx context.Context, bucket, fileKey string) error
	KeyFromPublicURL(bucket, publicURL string) (string, bool)
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	storage ObjectRemover
	bucket  string
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, storage ObjectRemover, bucket string, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:  server,
		mux:     mux,
		storage: storage,
		bucket:  bucket,
		log:     log,
	}

	mux.HandleFunc(TaskLeadImagesCleanup, w.handleLeadImagesCleanup)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleLeadImagesCleanup removes every object of the payload that lives in
// the evidence bucket. Foreign URLs are skipped. Failed deletions are joined
// so asynq retries the task; deleting an already missing object succeeds.
func (w *Worker) handleLeadImagesCleanup(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadImagesCleanupPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if w.storage == nil {
		return nil
	}

	var errs []error
	removed := 0
	for _, url := range payload.ImageURLs {
		key, ok := w.storage.KeyFromPublicURL(w.bucket, url)
		if !ok {
			w.log.Warn("skipping image outside bucket", "leadId", payload.LeadID, "url", url)
			continue
		}
		if err := w.storage.DeleteObject(ctx, w.bucket, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
			continue
		}
		removed++
	}

	w.log.Info("lead images cleaned up", "leadId", payload.LeadID, "removed", removed, "failed", len(errs))
	return errors.Join(errs...)
}
