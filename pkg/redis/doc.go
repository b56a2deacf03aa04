// Package redis connects to Redis and provides the distributed lock used to
// keep periodic ledger jobs from running on two replicas at once.
//
//	client, err := redis.Connect(ctx, cfg)
//	locker := redis.NewLocker(client, cfg.LockPrefix)
//	unlock, ok, err := locker.TryLock(ctx, "expire_sweep", time.Minute)
//
// Release only deletes the key while it still carries the caller's owner
// token, so a lock that expired and was taken over is never released by the
// previous holder.
package redis
