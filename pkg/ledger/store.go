package ledger

import (
	"context"
	"time"
)

// Store is the ledger persistence contract. Every mutating method is a single
// conditional write keyed by an external identifier.
type Store interface {
	// UpsertPayment applies a status write. It creates the record when absent
	// and otherwise only moves it forward; a replay of the current status
	// returns ErrAlreadyApplied and a backwards move ErrTransitionRejected.
	// The record as stored after the call is returned with both errors.
	UpsertPayment(ctx context.Context, w PaymentWrite) (PaymentRecord, error)
	// ClaimPaymentMail flips the confirmation mail flag and reports whether
	// this caller flipped it.
	ClaimPaymentMail(ctx context.Context, paymentID string) (bool, error)
	FindPayment(ctx context.Context, paymentID string) (PaymentRecord, error)

	// CreateSubscription inserts a recurring subscription record.
	CreateSubscription(ctx context.Context, rec PaymentRecord) error
	FindSubscription(ctx context.Context, subscriptionID string) (PaymentRecord, error)
	// FindActiveSubscription returns the user's live autopay record.
	FindActiveSubscription(ctx context.Context, userID string) (PaymentRecord, error)
	// ActivateSubscription moves a created subscription to active.
	ActivateSubscription(ctx context.Context, subscriptionID string, expiry *time.Time, now time.Time) (PaymentRecord, error)
	// RenewSubscription extends expiry to max(expiry, now) + period once per
	// invoice id and marks the record successful.
	RenewSubscription(ctx context.Context, subscriptionID, invoiceID string, period time.Duration, now time.Time) (PaymentRecord, error)
	// CancelSubscription turns autopay off.
	CancelSubscription(ctx context.Context, subscriptionID string, now time.Time) (PaymentRecord, error)

	// InsertAddon stores a new add-on purchase; duplicates return ErrDuplicate.
	InsertAddon(ctx context.Context, a AddonPurchase) error
	ClaimAddonMail(ctx context.Context, paymentID string) (bool, error)
	FindAddon(ctx context.Context, paymentID string) (AddonPurchase, error)

	// ActivePayment returns the most recently updated record entitling the
	// user at now, or ErrNotFound.
	ActivePayment(ctx context.Context, userID string, now time.Time) (PaymentRecord, error)
	// AddonUnits sums quantity over the user's live purchases of sku.
	AddonUnits(ctx context.Context, userID, sku string, now time.Time) (int, error)

	// ExpiryCandidates lists records the sweeper should expire at now.
	ExpiryCandidates(ctx context.Context, now time.Time, limit int) ([]PaymentRecord, error)
	// MarkExpired expires a successful record whose expired_at is unset and
	// reports whether this call did it.
	MarkExpired(ctx context.Context, paymentID string, now time.Time) (bool, error)

	// ReminderCandidates lists successful, non-autopay records expiring in
	// [from, to) that have not been sent reminder m.
	ReminderCandidates(ctx context.Context, m Reminder, from, to time.Time, limit int) ([]PaymentRecord, error)
	ClaimReminder(ctx context.Context, paymentID string, m Reminder) (bool, error)
}
