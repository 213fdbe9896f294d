package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/skill-analyzer/internal/logger"
)

// InflightGuard keeps at most one analysis running per document.
// ok is false when another holder owns key.
type InflightGuard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

const inflightPrefix = "analysis:inflight:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisGuard shares the guard across processes. ttl bounds a crashed holder.
func NewRedisGuard(client *redis.Client, ttl time.Duration, log *zap.Logger) InflightGuard {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &redisGuard{client: client, ttl: ttl, log: logger.OrNop(log)}
}

func (g *redisGuard) Acquire(ctx context.Context, key string) (func(), bool, error) {
	lockKey := inflightPrefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, lockKey, token, g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire inflight lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() { g.release(lockKey, token) }
	return release, true, nil
}

func (g *redisGuard) release(lockKey, token string) {
	// the caller's context may already be done
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, g.client, []string{lockKey}, token).Err(); err != nil {
		g.log.Warn("failed to release inflight lock; it is held until ttl expires",
			zap.String("key", lockKey), zap.Duration("ttl", g.ttl), zap.Error(err))
	}
}

type memoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryGuard guards within the current process only.
func NewMemoryGuard() InflightGuard {
	return &memoryGuard{held: make(map[string]struct{})}
}

func (g *memoryGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return nil, false, nil
	}
	g.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}
	return release, true, nil
}
