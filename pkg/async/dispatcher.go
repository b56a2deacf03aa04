package async

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

// Task is a unit of side-effect work.
type Task func(ctx context.Context) error

// Dispatcher runs tasks asynchronously and logs their failures.
type Dispatcher struct {
	logger  *slog.Logger
	timeout time.Duration
	sem     chan struct{}
	onError func(name string, err error)

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTimeout bounds each task. Defaults to 30s; zero or less disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithConcurrency caps the number of tasks running at once.
func WithConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sem = make(chan struct{}, n)
		}
	}
}

// WithErrorHook is called for every failed task, after logging.
func WithErrorHook(fn func(name string, err error)) Option {
	return func(d *Dispatcher) { d.onError = fn }
}

func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:  slog.Default(),
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("dispatcher"))
	return d
}

// Go starts task in the background. It returns ErrDispatcherClosed after
// Close; the task is then not run.
func (d *Dispatcher) Go(ctx context.Context, name string, task Task) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		if d.sem != nil {
			d.sem <- struct{}{}
			defer func() { <-d.sem }()
		}
		d.run(ctx, name, task)
	}()
	return nil
}

func (d *Dispatcher) run(ctx context.Context, name string, task Task) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
		}()
		return task(ctx)
	}()
	if err == nil {
		return
	}

	d.logger.WarnContext(ctx, "side effect failed",
		logger.Job(name),
		logger.Duration(time.Since(start)),
		logger.Error(err),
	)
	if d.onError != nil {
		d.onError(name, err)
	}
}

// Wait blocks until all started tasks are done.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops accepting tasks and waits for running ones, or for ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
