package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func write(id string, status ledger.Status) ledger.PaymentWrite {
	return ledger.PaymentWrite{
		PaymentID:  id,
		UserID:     "user-1",
		OrderID:    "order_" + id,
		PlanID:     "silver",
		Amount:     20000,
		Currency:   "INR",
		Status:     status,
		ExpiryDate: ptr(now.AddDate(0, 0, 30)),
		Now:        now,
	}
}

func TestMemoryStore_UpsertPayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates then moves forward", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()

		rec, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusPending))
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusPending, rec.Status)

		rec, err = s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess))
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSuccess, rec.Status)
		assert.Equal(t, now, rec.CreatedAt)
	})

	t.Run("replay of success is already applied", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()

		_, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess))
		require.NoError(t, err)

		later := write("pay_1", ledger.StatusSuccess)
		later.ExpiryDate = ptr(now.AddDate(0, 0, 60))
		rec, err := s.UpsertPayment(ctx, later)
		require.ErrorIs(t, err, ledger.ErrAlreadyApplied)
		assert.Equal(t, now.AddDate(0, 0, 30), *rec.ExpiryDate)
	})

	t.Run("success never goes back", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()

		_, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess))
		require.NoError(t, err)

		for _, st := range []ledger.Status{ledger.StatusPending, ledger.StatusFailed} {
			rec, err := s.UpsertPayment(ctx, write("pay_1", st))
			require.ErrorIs(t, err, ledger.ErrTransitionRejected)
			assert.Equal(t, ledger.StatusSuccess, rec.Status)
		}
	})

	t.Run("rejects invalid writes", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()

		w := write("pay_1", ledger.StatusExpired)
		_, err := s.UpsertPayment(ctx, w)
		require.ErrorIs(t, err, ledger.ErrInvalidRecord)

		w = write("", ledger.StatusSuccess)
		_, err = s.UpsertPayment(ctx, w)
		require.ErrorIs(t, err, ledger.ErrInvalidRecord)
	})

	t.Run("concurrent writers produce one record", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			applied int
		)
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess)); err == nil {
					mu.Lock()
					applied++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, applied)
	})
}

func TestMemoryStore_ClaimPaymentMail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := ledger.NewMemoryStore()

	_, err := s.ClaimPaymentMail(ctx, "missing")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess))
	require.NoError(t, err)

	ok, err := s.ClaimPaymentMail(ctx, "pay_1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ClaimPaymentMail(ctx, "pay_1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func subscription(id string) ledger.PaymentRecord {
	return ledger.PaymentRecord{
		UserID:             "user-1",
		PlanID:             "silver",
		Amount:             20000,
		Currency:           "INR",
		Status:             ledger.StatusPending,
		SubscriptionID:     id,
		SubscriptionStatus: ledger.SubscriptionCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestMemoryStore_SubscriptionLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := ledger.NewMemoryStore()

	require.NoError(t, s.CreateSubscription(ctx, subscription("sub_1")))
	require.ErrorIs(t, s.CreateSubscription(ctx, subscription("sub_1")), ledger.ErrDuplicate)

	rec, err := s.FindPayment(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", rec.PaymentID)

	_, err = s.FindActiveSubscription(ctx, "user-1")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	expiry := now.AddDate(0, 0, 30)
	rec, err = s.ActivateSubscription(ctx, "sub_1", &expiry, now)
	require.NoError(t, err)
	assert.True(t, rec.Autopay)
	assert.Equal(t, ledger.SubscriptionActive, rec.SubscriptionStatus)

	_, err = s.ActivateSubscription(ctx, "sub_1", &expiry, now)
	require.ErrorIs(t, err, ledger.ErrAlreadyApplied)

	active, err := s.FindActiveSubscription(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sub_1", active.SubscriptionID)

	rec, err = s.CancelSubscription(ctx, "sub_1", now)
	require.NoError(t, err)
	assert.False(t, rec.Autopay)
	assert.Equal(t, ledger.SubscriptionCancelled, rec.SubscriptionStatus)

	_, err = s.CancelSubscription(ctx, "sub_1", now)
	require.ErrorIs(t, err, ledger.ErrAlreadyApplied)

	_, err = s.ActivateSubscription(ctx, "sub_1", &expiry, now)
	require.ErrorIs(t, err, ledger.ErrTransitionRejected)

	_, err = s.ActivateSubscription(ctx, "sub_missing", &expiry, now)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemoryStore_RenewSubscription(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	period := 30 * 24 * time.Hour

	t.Run("extends from current expiry once per invoice", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		require.NoError(t, s.CreateSubscription(ctx, subscription("sub_1")))

		expiry := now.Add(10 * 24 * time.Hour)
		_, err := s.ActivateSubscription(ctx, "sub_1", &expiry, now)
		require.NoError(t, err)

		rec, err := s.RenewSubscription(ctx, "sub_1", "inv_1", period, now)
		require.NoError(t, err)
		assert.Equal(t, expiry.Add(period), *rec.ExpiryDate)
		assert.Equal(t, ledger.StatusSuccess, rec.Status)

		for range 3 {
			again, err := s.RenewSubscription(ctx, "sub_1", "inv_1", period, now)
			require.ErrorIs(t, err, ledger.ErrAlreadyApplied)
			assert.Equal(t, *rec.ExpiryDate, *again.ExpiryDate)
		}

		next, err := s.RenewSubscription(ctx, "sub_1", "inv_2", period, now)
		require.NoError(t, err)
		assert.True(t, next.ExpiryDate.After(*rec.ExpiryDate))
	})

	t.Run("lapsed expiry renews from now", func(t *testing.T) {
		t.Parallel()
		s := ledger.NewMemoryStore()
		require.NoError(t, s.CreateSubscription(ctx, subscription("sub_1")))

		expiry := now.Add(-48 * time.Hour)
		_, err := s.ActivateSubscription(ctx, "sub_1", &expiry, now)
		require.NoError(t, err)

		rec, err := s.RenewSubscription(ctx, "sub_1", "inv_1", period, now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(period), *rec.ExpiryDate)
	})
}

func TestMemoryStore_Addons(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := ledger.NewMemoryStore()

	a, err := ledger.NewAddonPurchase(ledger.AddonInput{
		PaymentID: "pay_a1",
		UserID:    "user-1",
		SKU:       "extra_offer",
		Quantity:  2,
		Amount:    10000,
		Currency:  "INR",
		Now:       now,
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(ledger.AddonValidity), a.ExpiryDate)

	require.NoError(t, s.InsertAddon(ctx, a))
	require.ErrorIs(t, s.InsertAddon(ctx, a), ledger.ErrDuplicate)

	units, err := s.AddonUnits(ctx, "user-1", "extra_offer", now)
	require.NoError(t, err)
	assert.Equal(t, 2, units)

	units, err = s.AddonUnits(ctx, "user-1", "extra_offer", now.Add(ledger.AddonValidity+time.Second))
	require.NoError(t, err)
	assert.Zero(t, units)

	ok, err := s.ClaimAddonMail(ctx, "pay_a1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.ClaimAddonMail(ctx, "pay_a1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ledger.NewAddonPurchase(ledger.AddonInput{
		PaymentID: "pay_a2", UserID: "user-1", SKU: "extra_offer", Quantity: 1, Autopay: true, Now: now,
	})
	require.ErrorIs(t, err, ledger.ErrAddonAutopay)

	a.PaymentID = "pay_a3"
	a.Autopay = true
	require.ErrorIs(t, s.InsertAddon(ctx, a), ledger.ErrAddonAutopay)
}

func TestMemoryStore_ActivePayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := ledger.NewMemoryStore()

	_, err := s.ActivePayment(ctx, "user-1", now)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	old := write("pay_old", ledger.StatusSuccess)
	old.PlanID = "gold"
	old.Now = now.Add(-time.Hour)
	_, err = s.UpsertPayment(ctx, old)
	require.NoError(t, err)

	_, err = s.UpsertPayment(ctx, write("pay_new", ledger.StatusSuccess))
	require.NoError(t, err)

	rec, err := s.ActivePayment(ctx, "user-1", now)
	require.NoError(t, err)
	assert.Equal(t, "pay_new", rec.PaymentID)

	_, err = s.ActivePayment(ctx, "user-1", now.AddDate(0, 0, 31))
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := ledger.NewMemoryStore()

	w := write("pay_1", ledger.StatusSuccess)
	w.ExpiryDate = ptr(now.Add(-24 * time.Hour))
	_, err := s.UpsertPayment(ctx, w)
	require.NoError(t, err)

	live := write("pay_2", ledger.StatusSuccess)
	_, err = s.UpsertPayment(ctx, live)
	require.NoError(t, err)

	recs, err := s.ExpiryCandidates(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "pay_1", recs[0].PaymentID)

	ok, err := s.MarkExpired(ctx, "pay_1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.MarkExpired(ctx, "pay_1", now)
	require.NoError(t, err)
	assert.False(t, ok)

	recs, err = s.ExpiryCandidates(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)

	rec, err := s.FindPayment(ctx, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusExpired, rec.Status)
	require.NotNil(t, rec.ExpiredAt)
}

func TestMemoryStore_Reminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := ledger.NewMemoryStore()

	w := write("pay_1", ledger.StatusSuccess)
	w.ExpiryDate = ptr(now.AddDate(0, 0, 2))
	_, err := s.UpsertPayment(ctx, w)
	require.NoError(t, err)

	from := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	recs, err := s.ReminderCandidates(ctx, ledger.ReminderTwoDays, from, to, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	ok, err := s.ClaimReminder(ctx, "pay_1", ledger.ReminderTwoDays)
	require.NoError(t, err)
	assert.True(t, ok)

	recs, err = s.ReminderCandidates(ctx, ledger.ReminderTwoDays, from, to, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = s.ReminderCandidates(ctx, ledger.ReminderToday, from, to, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
