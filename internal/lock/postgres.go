package lock

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Postgres takes session-level advisory locks on a dedicated pooled connection.
// The lock lives as long as that connection, so it is released on unlock or
// when the connection drops.
type Postgres struct {
	db   *sql.DB
	opts Options
}

func NewPostgres(db *sql.DB, opts Options) *Postgres {
	return &Postgres{db: db, opts: opts.withDefaults()}
}

func (p *Postgres) Acquire(ctx context.Context, name string) (Unlock, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserving connection: %w", err)
	}

	key := Key(name)

	err = poll(ctx, p.opts, func(ctx context.Context) (bool, error) {
		var ok bool
		if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok); err != nil {
			return false, fmt.Errorf("trying advisory lock: %w", err)
		}

		return ok, nil
	})
	if err != nil {
		conn.Close()
		return nil, err
	}

	var once sync.Once

	var unlockErr error

	return func() error {
		once.Do(func() {
			defer conn.Close()

			if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", key); err != nil {
				unlockErr = fmt.Errorf("releasing advisory lock: %w", err)
			}
		})

		return unlockErr
	}, nil
}
