package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

const (
	// lockTTL caps how long a crashed holder can keep a key locked.
	lockTTL      = 30 * time.Second
	pollInterval = 100 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lock reacquired by someone else is never released from under them.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker implements Locker on a shared redis instance, giving mutual
// exclusion across all service replicas.
type RedisLocker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisLocker creates a distributed locker on the given redis client.
func NewRedisLocker(client *redis.Client, logger *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger}
}

// WithLock acquires key, runs fn and always releases.
func (l *RedisLocker) WithLock(ctx context.Context, key string, waitTimeout time.Duration, fn func() error) error {
	token := uuid.New().String()
	if err := l.acquire(ctx, key, token, waitTimeout); err != nil {
		return err
	}
	defer l.release(key, token)

	return fn()
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string, waitTimeout time.Duration) error {
	deadline := time.Now().Add(waitTimeout)
	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return fmt.Errorf("lock backend error: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.NewLockTimeoutError(key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// release runs on its own context so a cancelled request still releases the
// lock.
func (l *RedisLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("failed to release lock",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
