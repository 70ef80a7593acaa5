package lock

import (
	"context"
	"time"
)

// Locker provides keyed mutual exclusion with a bounded acquisition wait.
// Two calls for the same key are strictly serialized; unrelated keys proceed
// in parallel. Waiters poll for the lock with no fairness ordering.
type Locker interface {
	// WithLock acquires the named lock, runs fn and releases the lock in all
	// cases. Waiting longer than waitTimeout for acquisition fails with a
	// LockTimeout error without running fn.
	WithLock(ctx context.Context, key string, waitTimeout time.Duration, fn func() error) error
}
