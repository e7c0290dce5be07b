package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadboard_backend/internal/adapters/storage"
	"leadboard_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBucket struct {
	fakeRemover
	objects []storage.ObjectInfo
	listErr error
}

func (f *fakeBucket) ListObjects(context.Context, string) ([]storage.ObjectInfo, error) {
	return f.objects, f.listErr
}

type staticRefs []string

func (r staticRefs) ListImageURLs(context.Context) ([]string, error) {
	return r, nil
}

func TestOrphanSweepRemovesOnlyOldUnreferencedObjects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bucket := &fakeBucket{objects: []storage.ObjectInfo{
		{Key: "kept.png", LastModified: now.Add(-72 * time.Hour)},
		{Key: "orphan.png", LastModified: now.Add(-48 * time.Hour)},
		{Key: "fresh.png", LastModified: now.Add(-time.Hour)},
	}}
	sweeper := NewOrphanSweeper(bucket, staticRefs{testBase + "kept.png"}, "evidence", 24*time.Hour, logger.NewDiscard())
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"orphan.png"}, bucket.deleted)
}

func TestOrphanSweepMatchesKeysAcrossAssetHosts(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-72 * time.Hour)
	bucket := &fakeBucket{objects: []storage.ObjectInfo{
		{Key: "a.png", LastModified: old},
		{Key: "b.png", LastModified: old},
		{Key: "c.png", LastModified: old},
	}}
	refs := staticRefs{
		"http://minio.local:9000/evidence/a.png",
		"https://cdn.example.com/evidence/b.png",
		"https://cdn.example.com/other/c.png",
	}
	sweeper := NewOrphanSweeper(bucket, refs, "evidence", 24*time.Hour, logger.NewDiscard())
	sweeper.now = func() time.Time { return now }

	removed, err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"c.png"}, bucket.deleted)
}

func TestOrphanSweepStopsWhenListingFails(t *testing.T) {
	bucket := &fakeBucket{listErr: errors.New("minio down")}
	sweeper := NewOrphanSweeper(bucket, staticRefs{}, "evidence", 0, logger.NewDiscard())

	removed, err := sweeper.Sweep(context.Background())

	require.Error(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, bucket.deleted)
}

func TestCronRejectsInvalidSchedule(t *testing.T) {
	c := NewCron(logger.NewDiscard())
	sweeper := NewOrphanSweeper(&fakeBucket{}, staticRefs{}, "evidence", 0, logger.NewDiscard())

	assert.Error(t, c.AddOrphanSweep("every tuesday", sweeper))
	assert.NoError(t, c.AddOrphanSweep("", sweeper))
}
