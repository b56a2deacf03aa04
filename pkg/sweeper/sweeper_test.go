package sweeper_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/sweeper"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/users"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Kind
}

func (m *recordingMailer) Send(_ context.Context, kind email.Kind, _ string, _ email.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, kind)
	return nil
}

func (m *recordingMailer) kinds() []email.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.Kind(nil), m.sent...)
}

type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	err    error
}

func (l *recordingLocker) LockResources(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.locked = append(l.locked, userID)
	return nil
}

func (l *recordingLocker) calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.locked...)
}

type fixture struct {
	sweeper *sweeper.Sweeper
	store   *ledger.MemoryStore
	locker  *recordingLocker
	mailer  *recordingMailer
	dir     *users.MemoryDirectory
	notes   *notifications.MemoryStorage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)

	f := &fixture{
		store:  ledger.NewMemoryStore(),
		locker: &recordingLocker{},
		mailer: &recordingMailer{},
		dir:    users.NewMemoryDirectory(),
		notes:  notifications.NewMemoryStorage(),
	}
	f.dir.Put("user-1", users.Contact{Email: "one@example.com", EmailEnabled: true})
	f.dir.Put("user-2", users.Contact{Email: "two@example.com", EmailEnabled: false})

	fx := effects.New(nil,
		effects.WithLogger(logger.Nop()),
		effects.WithDirectory(f.dir),
		effects.WithMailer(f.mailer),
		effects.WithNotifier(notifications.NewManager(f.notes, nil)),
	)
	f.sweeper = sweeper.New(f.store, cat, f.locker, sweeper.WithEffects(fx), sweeper.WithLogger(logger.Nop()))
	return f
}

func (f *fixture) pay(t *testing.T, paymentID, userID, planID string, expiry time.Time) {
	t.Helper()
	_, err := f.store.UpsertPayment(context.Background(), ledger.PaymentWrite{
		PaymentID:  paymentID,
		UserID:     userID,
		PlanID:     planID,
		Amount:     20000,
		Currency:   "INR",
		Status:     ledger.StatusSuccess,
		ExpiryDate: &expiry,
		Now:        expiry.AddDate(0, 0, -30),
	})
	require.NoError(t, err)
}

func TestSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("expires a lapsed plan once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.pay(t, "pay_1", "user-1", "silver", now.AddDate(0, 0, -1))

		res, err := f.sweeper.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, sweeper.Result{Scanned: 1, Applied: 1}, res)

		res, err = f.sweeper.Sweep(ctx, now.Add(5*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, sweeper.Result{}, res)
		f.sweeper.Wait()

		rec, err := f.store.FindPayment(ctx, "pay_1")
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusExpired, rec.Status)
		require.NotNil(t, rec.ExpiredAt)
		assert.Equal(t, now, *rec.ExpiredAt)

		assert.Equal(t, []string{"user-1"}, f.locker.calls())
		assert.Equal(t, []email.Kind{email.KindPlanExpired}, f.mailer.kinds())

		list, err := f.notes.List(ctx, "user-1", notifications.ListOptions{})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, notifications.KindPlanExpired, list[0].Kind)
	})

	t.Run("leaves resources open while another plan is live", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.pay(t, "pay_old", "user-1", "silver", now.AddDate(0, 0, -1))
		f.pay(t, "pay_new", "user-1", "gold", now.AddDate(0, 0, 60))

		res, err := f.sweeper.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Applied)
		assert.Empty(t, f.locker.calls())

		rec, err := f.store.FindPayment(ctx, "pay_new")
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSuccess, rec.Status)
	})

	t.Run("lock failure keeps the record for the next pass", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.pay(t, "pay_1", "user-1", "silver", now.AddDate(0, 0, -1))
		f.locker.err = errors.New("mongo unavailable")

		res, err := f.sweeper.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, sweeper.Result{Scanned: 1, Failed: 1}, res)

		rec, err := f.store.FindPayment(ctx, "pay_1")
		require.NoError(t, err)
		assert.Equal(t, ledger.StatusSuccess, rec.Status)

		f.locker.mu.Lock()
		f.locker.err = nil
		f.locker.mu.Unlock()

		res, err = f.sweeper.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Applied)
	})

	t.Run("skips live and autopay records", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.pay(t, "pay_live", "user-1", "silver", now.Add(time.Hour))

		expiry := now.AddDate(0, 0, -1)
		require.NoError(t, f.store.CreateSubscription(ctx, ledger.PaymentRecord{
			UserID:             "user-1",
			PlanID:             "silver",
			Status:             ledger.StatusSuccess,
			ExpiryDate:         &expiry,
			Autopay:            true,
			SubscriptionID:     "sub_1",
			SubscriptionStatus: ledger.SubscriptionActive,
		}))

		res, err := f.sweeper.Sweep(ctx, now)
		require.NoError(t, err)
		assert.Zero(t, res.Scanned)
	})

	t.Run("concurrent sweeps expire once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.pay(t, "pay_1", "user-1", "silver", now.AddDate(0, 0, -1))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			applied int
		)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := f.sweeper.Sweep(ctx, now)
				assert.NoError(t, err)
				mu.Lock()
				applied += res.Applied
				mu.Unlock()
			}()
		}
		wg.Wait()
		f.sweeper.Wait()

		assert.Equal(t, 1, applied)
		assert.Equal(t, []email.Kind{email.KindPlanExpired}, f.mailer.kinds())
	})
}

func TestReminderWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)

	from, to := sweeper.ReminderWindow(ledger.ReminderToday, now)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), to)

	from, to = sweeper.ReminderWindow(ledger.ReminderTwoDays, now)
	assert.Equal(t, time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC), to)
}

func TestReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	f := newFixture(t)
	f.pay(t, "pay_today", "user-1", "silver", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))
	f.pay(t, "pay_two", "user-1", "gold", time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC))
	f.pay(t, "pay_later", "user-1", "gold", time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC))
	f.pay(t, "pay_opted_out", "user-2", "silver", time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC))

	res, err := f.sweeper.Reminders(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 3, res.Queued)
	assert.Zero(t, res.Applied)
	f.sweeper.Wait()

	assert.ElementsMatch(t, []email.Kind{email.KindExpiryToday, email.KindExpiryTwoDays}, f.mailer.kinds())

	two, err := f.store.FindPayment(ctx, "pay_two")
	require.NoError(t, err)
	assert.True(t, two.TwoDayMailSent)
	assert.False(t, two.TodayMailSent)

	// A later pass the same day finds nothing left to send.
	res, err = f.sweeper.Reminders(ctx, now.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, res.Scanned)
	f.sweeper.Wait()
	assert.Len(t, f.mailer.kinds(), 2)
}
