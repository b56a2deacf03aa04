// Package sweeper expires lapsed one-time plans and sends expiry reminders.
//
// Sweep selects successful, non-autopay records whose expiry has passed,
// locks the owner's shops and offers unless another plan still entitles
// them, and marks each record expired. The expired_at guard makes repeated
// or overlapping sweeps safe: only the sweep that flips a record sends the
// plan expired mail.
//
// Reminders sends the two-days-ahead and expires-today mails for records
// expiring within the matching UTC day. Each milestone has its own sent flag
// so a reminder goes out at most once.
//
// Both are meant to run on a schedule, see pkg/scheduler.
package sweeper
