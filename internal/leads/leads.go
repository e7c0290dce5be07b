// Package leads provides the lead board bounded context.
// This file defines the ports other parts of the system implement for it.
package leads

import (
	"context"

	"github.com/google/uuid"
)

// ImageCleanupScheduler queues removal of stored images after a lead is
// deleted. Implemented by the background job client.
type ImageCleanupScheduler interface {
	ScheduleImageCleanup(ctx context.Context, leadID uuid.UUID, imageURLs []string) error
}
