package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// Healthcheck reports whether the scheduler lock backend answers PING.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		pong, err := client.Ping(ctx).Result()
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if pong != "PONG" {
			return errors.Join(ErrHealthcheckFailed, fmt.Errorf("unexpected reply %q", pong))
		}
		return nil
	}
}
