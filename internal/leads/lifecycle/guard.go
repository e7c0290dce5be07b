package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InFlightGuard allows at most one status change per lead at a time.
type InFlightGuard interface {
	// Acquire returns ok=false when another change for id is already running.
	// release must be called exactly once when ok is true.
	Acquire(ctx context.Context, id uuid.UUID) (release func(), ok bool, err error)
}

// MemoryGuard is a process-local guard.
type MemoryGuard struct {
	mu     sync.Mutex
	active map[uuid.UUID]bool
}

// NewMemoryGuard creates an empty guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{active: make(map[uuid.UUID]bool)}
}

func (g *MemoryGuard) Acquire(_ context.Context, id uuid.UUID) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active[id] {
		return nil, false, nil
	}
	g.active[id] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.active, id)
	}, true, nil
}

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by another instance is never removed.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard shares the guard across API instances. Locks expire after ttl so
// a crashed instance cannot block a lead forever.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisGuard creates a guard using SET NX PX.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{client: client, ttl: ttl, prefix: "leads:transition:"}
}

func (g *RedisGuard) Acquire(ctx context.Context, id uuid.UUID) (func(), bool, error) {
	key := g.prefix + id.String()
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, key, token, g.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return func() {
		// The request context may already be done.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, g.client, []string{key}, token).Err()
	}, true, nil
}

var (
	_ InFlightGuard = (*MemoryGuard)(nil)
	_ InFlightGuard = (*RedisGuard)(nil)
)
