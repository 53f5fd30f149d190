package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/campbooking/internal/lock"
)

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, lock.Key("booking"), lock.Key("booking"))
	assert.NotEqual(t, lock.Key("booking"), lock.Key("sweeper"))
}

func TestLocal_TimesOutWhileHeld(t *testing.T) {
	l := lock.NewLocal(lock.Options{Timeout: 50 * time.Millisecond, Retry: 5 * time.Millisecond})

	unlock, err := l.Acquire(context.Background(), "booking")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "booking")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	other, err := l.Acquire(context.Background(), "other")
	require.NoError(t, err)
	require.NoError(t, other())

	require.NoError(t, unlock())
	require.NoError(t, unlock(), "second unlock is a no-op")

	again, err := l.Acquire(context.Background(), "booking")
	require.NoError(t, err)
	require.NoError(t, again())
}

func TestLocal_MutualExclusion(t *testing.T) {
	l := lock.NewLocal(lock.Options{Timeout: 5 * time.Second, Retry: time.Millisecond})

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock, err := l.Acquire(context.Background(), "booking")
			if !assert.NoError(t, err) {
				return
			}

			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}

			time.Sleep(2 * time.Millisecond)
			inside.Add(-1)

			assert.NoError(t, unlock())
		}()
	}

	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := lock.NewLocal(lock.Options{Timeout: time.Second, Retry: 5 * time.Millisecond})

	unlock, err := l.Acquire(context.Background(), "booking")
	require.NoError(t, err)

	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Acquire(ctx, "booking")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)
}
