package lock

import (
	"context"
	"sync"
	"time"

	"github.com/Serai-Stays/service-reservation/internal/domain"
)

// MemoryLocker implements Locker within a single process. It backs tests and
// single-instance deployments; multi-replica deployments need RedisLocker.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewMemoryLocker creates an in-process locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]chan struct{})}
}

// WithLock acquires key, runs fn and always releases.
func (l *MemoryLocker) WithLock(ctx context.Context, key string, waitTimeout time.Duration, fn func() error) error {
	sem := l.semaphore(key)

	timer := time.NewTimer(waitTimeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
	case <-timer.C:
		return domain.NewLockTimeoutError(key)
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-sem }()

	return fn()
}

func (l *MemoryLocker) semaphore(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[key] = sem
	}
	return sem
}
