// Package scheduler runs periodic in-process jobs such as the expiry sweep.
//
// A Scheduler ticks at a fixed check interval and runs every job whose
// schedule is due. When a Locker is configured each run is guarded by a
// short-lived distributed lock, so only one instance of the service runs a
// given job at a time; the others record a skipped run.
//
//	s := scheduler.New(
//		scheduler.WithLocker(redis.NewLocker(client, "ledger:")),
//		scheduler.WithMetrics(metrics.NewJobMetrics(prometheus.DefaultRegisterer)),
//	)
//	_ = s.Add("expiry_sweep", scheduler.EveryMinutes(5), sweepJob)
//	go s.Start(ctx)
package scheduler
