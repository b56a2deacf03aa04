package async_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/async"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

func TestDispatcher_Go(t *testing.T) {
	t.Parallel()

	t.Run("runs tasks after caller context is cancelled", func(t *testing.T) {
		t.Parallel()

		d := async.NewDispatcher(async.WithLogger(logger.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var ran atomic.Bool
		require.NoError(t, d.Go(ctx, "task", func(ctx context.Context) error {
			ran.Store(ctx.Err() == nil)
			return nil
		}))
		d.Wait()
		assert.True(t, ran.Load())
	})

	t.Run("reports errors and panics to the hook", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			names []string
			errs  []error
		)
		d := async.NewDispatcher(
			async.WithLogger(logger.Nop()),
			async.WithErrorHook(func(name string, err error) {
				mu.Lock()
				defer mu.Unlock()
				names = append(names, name)
				errs = append(errs, err)
			}),
		)

		boom := errors.New("boom")
		require.NoError(t, d.Go(context.Background(), "fails", func(context.Context) error { return boom }))
		require.NoError(t, d.Go(context.Background(), "panics", func(context.Context) error { panic("bad") }))
		d.Wait()

		assert.ElementsMatch(t, []string{"fails", "panics"}, names)
		var panicked bool
		for _, err := range errs {
			if errors.Is(err, async.ErrTaskPanicked) {
				panicked = true
			}
		}
		assert.True(t, panicked)
	})

	t.Run("timeout bounds the task context", func(t *testing.T) {
		t.Parallel()

		d := async.NewDispatcher(async.WithLogger(logger.Nop()), async.WithTimeout(10*time.Millisecond))
		var got atomic.Value
		require.NoError(t, d.Go(context.Background(), "slow", func(ctx context.Context) error {
			<-ctx.Done()
			got.Store(ctx.Err())
			return ctx.Err()
		}))
		d.Wait()
		assert.ErrorIs(t, got.Load().(error), context.DeadlineExceeded)
	})

	t.Run("closed dispatcher rejects tasks", func(t *testing.T) {
		t.Parallel()

		d := async.NewDispatcher(async.WithLogger(logger.Nop()))
		require.NoError(t, d.Close(context.Background()))
		err := d.Go(context.Background(), "late", func(context.Context) error { return nil })
		require.ErrorIs(t, err, async.ErrDispatcherClosed)
	})
}
