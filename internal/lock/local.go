package lock

import (
	"context"
	"sync"
)

// Local is an in-process Locker for tests and single-process development.
type Local struct {
	opts Options

	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal(opts Options) *Local {
	return &Local{opts: opts.withDefaults(), held: make(map[string]struct{})}
}

func (l *Local) Acquire(ctx context.Context, name string) (Unlock, error) {
	err := poll(ctx, l.opts, func(context.Context) (bool, error) {
		l.mu.Lock()
		defer l.mu.Unlock()

		if _, busy := l.held[name]; busy {
			return false, nil
		}

		l.held[name] = struct{}{}

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once

	return func() error {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()

			delete(l.held, name)
		})

		return nil
	}, nil
}
