// Package httpserver runs the ledger's HTTP surface with graceful shutdown.
//
// Server.Run blocks until ctx is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests within the shutdown timeout. Listen
// errors are wrapped with ErrStart and drain errors with ErrShutdown.
//
// Health returns probe handlers: with no checks it answers liveness, with
// named checks it runs each one and reports readiness as JSON.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	r.Get("/health/live", httpserver.Health(log))
//	r.Get("/health/ready", httpserver.Health(log, httpserver.Check{Name: "mongo", Fn: ping}))
//	err := srv.Run(ctx, r)
package httpserver
