package changefeed

import (
	"context"
	"errors"
	"time"

	"leadboard_backend/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Channel is the Postgres notification channel fed by the leads trigger.
const Channel = "leads_changed"

const (
	minBackoff = time.Second
	maxBackoff = 30 * time.Second
)

// Listener holds a dedicated connection running LISTEN and forwards every
// notification to the hub. It reconnects with exponential backoff.
type Listener struct {
	pool     *pgxpool.Pool
	hub      *Hub
	log      *logger.Logger
	onSignal func()
}

// NewListener creates a listener. onSignal may be nil.
func NewListener(pool *pgxpool.Pool, hub *Hub, log *logger.Logger, onSignal func()) *Listener {
	return &Listener{pool: pool, hub: hub, log: log, onSignal: onSignal}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	backoff := minBackoff
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn("lead change listener disconnected", "error", err, "retryIn", backoff.String())

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (l *Listener) listen(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	// LISTEN state must not leak back into the pool.
	conn := pooled.Hijack()
	defer func() {
		_ = conn.Close(context.Background())
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return err
	}
	l.log.Info("listening for lead changes", "channel", Channel)

	// Changes may have happened while disconnected.
	l.signal()

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		l.log.Debug("lead change notification", "op", notification.Payload)
		l.signal()
	}
}

func (l *Listener) signal() {
	if l.onSignal != nil {
		l.onSignal()
	}
	l.hub.Notify()
}
