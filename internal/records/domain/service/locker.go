package service

import (
	"context"
	"errors"
	"sync"
	"time"

	apperrors "recordstore/internal/shared/errors"

	"golang.org/x/sync/semaphore"
)

// ReleaseFunc releases a held resource lock. It is safe to call more than
// once; only the first call releases.
type ReleaseFunc func()

// ResourceLocker is the write serializer: a cooperative exclusive lock keyed
// by collection resource identity. It guarantees at most one in-flight writer
// per resource key; readers are not serialized against writers.
//
// Waiting is bounded by the configured timeout and honors context
// cancellation. Lock entries are reference-counted and removed when the last
// holder or waiter is gone, so the key space does not grow with dead
// collections.
type ResourceLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
	timeout time.Duration
}

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// NewResourceLocker creates a locker whose acquisitions time out after the
// given duration. A non-positive timeout means waits are bounded only by the
// caller's context.
func NewResourceLocker(timeout time.Duration) *ResourceLocker {
	return &ResourceLocker{
		entries: make(map[string]*lockEntry),
		timeout: timeout,
	}
}

// Acquire takes the exclusive lock for resourceKey. On success it returns the
// release function the caller must defer on every exit path.
func (l *ResourceLocker) Acquire(ctx context.Context, resourceKey string) (ReleaseFunc, error) {
	l.mu.Lock()
	entry, ok := l.entries[resourceKey]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[resourceKey] = entry
	}
	entry.refs++
	l.mu.Unlock()

	acquireCtx := ctx
	var cancel context.CancelFunc
	if l.timeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	if err := entry.sem.Acquire(acquireCtx, 1); err != nil {
		l.unref(resourceKey, entry)
		if errors.Is(acquireCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, apperrors.NewInternalError("timed out waiting for write lock").
				WithCode(apperrors.CodeLockTimeout).
				WithDetail("resource", resourceKey)
		}
		return nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			entry.sem.Release(1)
			l.unref(resourceKey, entry)
		})
	}
	return release, nil
}

func (l *ResourceLocker) unref(resourceKey string, entry *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.entries, resourceKey)
	}
}

// Held reports how many resource keys currently have holders or waiters.
// Exposed for tests and diagnostics.
func (l *ResourceLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
