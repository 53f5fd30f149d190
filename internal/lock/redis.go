package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis implements Locker with SET NX PX. The TTL bounds how long a crashed
// holder can block others; it must exceed the longest critical section.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	opts   Options
}

func NewRedis(client *redis.Client, ttl time.Duration, opts Options) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Redis{client: client, ttl: ttl, opts: opts.withDefaults()}
}

func redisKey(name string) string {
	return "lock:" + name
}

func (r *Redis) Acquire(ctx context.Context, name string) (Unlock, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	key := redisKey(name)

	err = poll(ctx, r.opts, func(ctx context.Context) (bool, error) {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return false, fmt.Errorf("setting lock key: %w", err)
		}

		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once

	var unlockErr error

	return func() error {
		once.Do(func() {
			if err := releaseScript.Run(context.Background(), r.client, []string{key}, token).Err(); err != nil {
				unlockErr = fmt.Errorf("releasing lock key: %w", err)
			}
		})

		return unlockErr
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating lock token: %w", err)
	}

	return hex.EncodeToString(b), nil
}
