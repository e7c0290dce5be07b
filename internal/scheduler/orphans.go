package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/platform/logger"

	"github.com/robfig/cron/v3"
)

const (
	defaultOrphanSweepSchedule = "0 3 * * *"
	defaultOrphanGrace         = 24 * time.Hour
	orphanSweepTimeout         = 30 * time.Minute
)

// BucketStore is the part of the storage adapter the orphan sweep needs.
type BucketStore interface {
	ObjectRemover
	ListObjects(ctx context.Context, bucket string) ([]storage.ObjectInfo, error)
}

// ImageReferences lists the image URLs still attached to leads.
type ImageReferences interface {
	ListImageURLs(ctx context.Context) ([]string, error)
}

// OrphanSweeper removes uploads that never made it onto a lead. Images are
// uploaded before the lead form is saved, so a cancelled form leaves objects
// behind. Objects younger than the grace period are kept because their form
// may still be open.
type OrphanSweeper struct {
	store  BucketStore
	refs   ImageReferences
	bucket string
	grace  time.Duration
	now    func() time.Time
	log    *logger.Logger
}

func NewOrphanSweeper(store BucketStore, refs ImageReferences, bucket string, grace time.Duration, log *logger.Logger) *OrphanSweeper {
	if grace <= 0 {
		grace = defaultOrphanGrace
	}
	return &OrphanSweeper{store: store, refs: refs, bucket: bucket, grace: grace, now: time.Now, log: log}
}

// Sweep deletes unreferenced objects older than the grace period and returns
// how many were removed.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int, error) {
	urls, err := s.refs.ListImageURLs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list referenced images: %w", err)
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if key, ok := objectKey(s.bucket, u); ok {
			referenced[key] = struct{}{}
		}
	}

	objects, err := s.store.ListObjects(ctx, s.bucket)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	var errs []error
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			continue
		}
		if _, ok := referenced[obj.Key]; ok {
			continue
		}
		if err := s.store.DeleteObject(ctx, s.bucket, obj.Key); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// objectKey returns the part of a stored image URL after "/<bucket>/". The
// public host is ignored so a changed asset base URL still matches.
func objectKey(bucket, rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	marker := "/" + bucket + "/"
	idx := strings.Index(parsed.Path, marker)
	if idx < 0 {
		return "", false
	}
	key := parsed.Path[idx+len(marker):]
	return key, key != ""
}

// Cron runs periodic maintenance jobs.
type Cron struct {
	cron *cron.Cron
	log  *logger.Logger
}

func NewCron(log *logger.Logger) *Cron {
	return &Cron{cron: cron.New(), log: log}
}

// AddOrphanSweep schedules the sweeper. An empty spec uses the nightly default.
func (c *Cron) AddOrphanSweep(spec string, sweeper *OrphanSweeper) error {
	if spec == "" {
		spec = defaultOrphanSweepSchedule
	}
	_, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), orphanSweepTimeout)
		defer cancel()

		removed, err := sweeper.Sweep(ctx)
		if err != nil {
			c.log.Error("orphan image sweep failed", "error", err, "removed", removed)
			return
		}
		c.log.Info("orphan image sweep complete", "removed", removed)
	})
	return err
}

// Run starts the scheduler and blocks until ctx is done and running jobs finish.
func (c *Cron) Run(ctx context.Context) {
	c.cron.Start()
	<-ctx.Done()
	<-c.cron.Stop().Done()
}
