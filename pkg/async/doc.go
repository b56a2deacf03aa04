// Package async runs fire-and-forget side effects off the request path.
//
// A Dispatcher starts each task in its own goroutine with a context that is
// detached from the caller's cancellation but keeps its values, bounded by a
// per-task timeout. Task errors and panics are logged and never returned:
// the caller has already committed its own work and must not be failed by a
// side effect.
//
//	d := async.NewDispatcher(async.WithLogger(log), async.WithTimeout(10*time.Second))
//	d.Go(ctx, "payment_success_mail", func(ctx context.Context) error {
//		return mailer.Send(ctx, ...)
//	})
//
// Wait blocks until every started task has finished; use it on shutdown and
// in tests.
package async
