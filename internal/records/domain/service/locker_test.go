package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	. "recordstore/internal/records/domain/service"
	apperrors "recordstore/internal/shared/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceLocker_SerializesSameKey(t *testing.T) {
	locker := NewResourceLocker(time.Second)
	ctx := context.Background()

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, "projects/p1/collections/c1")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, max, "nunca debe haber más de un escritor dentro de la sección crítica")
	assert.Equal(t, 0, locker.Held())
}

func TestResourceLocker_DistinctKeysDoNotBlock(t *testing.T) {
	locker := NewResourceLocker(time.Second)
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "projects/p1/collections/a")
	require.NoError(t, err)
	defer releaseA()

	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(ctx, "projects/p1/collections/b")
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquisition of a different key blocked behind an unrelated holder")
	}
}

func TestResourceLocker_TimeoutYieldsLockTimeout(t *testing.T) {
	locker := NewResourceLocker(50 * time.Millisecond)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "projects/p1/collections/busy")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, "projects/p1/collections/busy")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeLockTimeout, apperrors.Code(err))
}

func TestResourceLocker_ContextCancellationPassesThrough(t *testing.T) {
	locker := NewResourceLocker(time.Minute)

	release, err := locker.Acquire(context.Background(), "projects/p1/collections/busy")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = locker.Acquire(ctx, "projects/p1/collections/busy")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, apperrors.CodeLockTimeout, apperrors.Code(err))
}

func TestResourceLocker_ReleaseIsIdempotent(t *testing.T) {
	locker := NewResourceLocker(time.Second)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "projects/p1/collections/c1")
	require.NoError(t, err)

	release()
	release() // second call must be a no-op

	// The key must be reusable afterwards.
	again, err := locker.Acquire(ctx, "projects/p1/collections/c1")
	require.NoError(t, err)
	again()
	assert.Equal(t, 0, locker.Held())
}
