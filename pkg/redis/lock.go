package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our owner token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive locks backed by SET NX PX.
type Locker struct {
	client redis.UniversalClient
	prefix string
}

func NewLocker(client redis.UniversalClient, prefix string) *Locker {
	if client == nil {
		panic("redis: locker requires a client")
	}
	return &Locker{client: client, prefix: prefix}
}

// TryLock attempts to own key for ttl. When ok is false another process
// holds the lock and unlock is nil.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error) {
	if key == "" {
		return nil, false, ErrLockKeyRequired
	}
	full := l.prefix + key
	owner := uuid.NewString()

	ok, err = l.client.SetNX(ctx, full, owner, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: setnx %s: %w", full, err)
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{full}, owner).Err(); err != nil && err != redis.Nil {
			return fmt.Errorf("redis: release %s: %w", full, err)
		}
		return nil
	}, true, nil
}
