// Package lock provides named mutual exclusion that holds across processes.
package lock

import (
	"context"
	"errors"
	"hash/fnv"
	"time"
)

// ErrNotAcquired is returned when the lock could not be taken before the timeout.
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func() error

type Locker interface {
	Acquire(ctx context.Context, name string) (Unlock, error)
}

// Options control how long Acquire keeps retrying.
type Options struct {
	Timeout time.Duration
	Retry   time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}

	if o.Retry <= 0 {
		o.Retry = 100 * time.Millisecond
	}

	return o
}

// Key maps a lock name onto the 64-bit key space used by Postgres advisory locks.
func Key(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("lock"))
	h.Write([]byte{0})
	h.Write([]byte(name))

	return int64(h.Sum64())
}

// poll calls try until it reports success, the timeout elapses or ctx ends.
func poll(ctx context.Context, opts Options, try func(ctx context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.Retry)
	defer ticker.Stop()

	for {
		ok, err := try(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ErrNotAcquired
			}

			return err
		}

		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ErrNotAcquired
		case <-ticker.C:
		}
	}
}
