package reconciler_test

import (
	"context"
	"encoding/json"
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
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/users"
)

const secret = "whsec_test"

type countingMailer struct {
	mu    sync.Mutex
	kinds []email.Kind
}

func (m *countingMailer) Send(_ context.Context, kind email.Kind, _ string, _ email.Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kinds = append(m.kinds, kind)
	return nil
}

func (m *countingMailer) count(kind email.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	rec    *reconciler.Reconciler
	store  *ledger.MemoryStore
	mailer *countingMailer
	notes  *notifications.MemoryStorage
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)

	dir := users.NewMemoryDirectory()
	dir.Put("user-1", users.Contact{Email: "user1@example.com", EmailEnabled: true})

	f := &fixture{
		store:  ledger.NewMemoryStore(),
		mailer: &countingMailer{},
		notes:  notifications.NewMemoryStorage(),
		now:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	fx := effects.New(nil,
		effects.WithLogger(logger.Nop()),
		effects.WithDirectory(dir),
		effects.WithMailer(f.mailer),
		effects.WithNotifier(notifications.NewManager(f.notes, nil)),
	)
	f.rec, err = reconciler.New(cat, f.store, secret,
		reconciler.WithEffects(fx),
		reconciler.WithLogger(logger.Nop()),
		reconciler.WithClock(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	return f
}

func (f *fixture) unread(t *testing.T) int {
	t.Helper()
	n, err := f.notes.CountUnread(context.Background(), "user-1")
	require.NoError(t, err)
	return n
}

func body(t *testing.T, event string, payload map[string]any) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"event": event, "payload": payload})
	require.NoError(t, err)
	return raw
}

func captured(t *testing.T, paymentID string, notes any) []byte {
	return body(t, razorpay.EventPaymentCaptured, map[string]any{
		"payment": map[string]any{"entity": map[string]any{
			"id":       paymentID,
			"order_id": "order_" + paymentID,
			"amount":   20000,
			"currency": "INR",
			"status":   "captured",
			"notes":    notes,
		}},
	})
}

func TestNew_RequiresWebhookSecret(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New(context.Background(), catalog.NewDefaultSource())
	require.NoError(t, err)
	_, err = reconciler.New(cat, ledger.NewMemoryStore(), "")
	require.ErrorIs(t, err, razorpay.ErrMissingWebhookSecret)
}

func TestHandleWebhook_Signature(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	raw := captured(t, "pay_1", map[string]any{"user_id": "user-1", "plan_name": "silver"})
	out, err := f.rec.HandleWebhook(context.Background(), raw, razorpay.Sign(raw, "wrong"))
	require.ErrorIs(t, err, reconciler.ErrInvalidSignature)
	assert.Equal(t, reconciler.OutcomeIgnored, out)

	_, err = f.store.FindPayment(context.Background(), "pay_1")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = f.rec.HandleWebhook(context.Background(), raw, "")
	require.ErrorIs(t, err, reconciler.ErrInvalidSignature)
}

func TestHandleWebhook_PaymentCapturedReplay(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	raw := captured(t, "pay_1", map[string]any{"user_id": "user-1", "plan_name": "silver"})
	sig := razorpay.Sign(raw, secret)

	out, err := f.rec.HandleWebhook(ctx, raw, sig)
	require.NoError(t, err)
	assert.Equal(t, reconciler.OutcomeApplied, out)

	for range 4 {
		out, err := f.rec.HandleWebhook(ctx, raw, sig)
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeDuplicate, out)
	}
	f.rec.Wait()

	rec, err := f.store.FindPayment(ctx, "pay_1")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSuccess, rec.Status)
	assert.Equal(t, "silver", rec.PlanID)
	require.NotNil(t, rec.ExpiryDate)
	assert.Equal(t, f.now.AddDate(0, 0, 30), *rec.ExpiryDate)
	assert.True(t, rec.MailSent)

	assert.Equal(t, 1, f.mailer.count(email.KindPaymentSuccess))
	assert.Equal(t, 1, f.unread(t))
}

func TestHandleWebhook_SubscriptionChargeCaptured(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	raw := body(t, razorpay.EventPaymentCaptured, map[string]any{
		"payment": map[string]any{"entity": map[string]any{
			"id":         "pay_r1",
			"order_id":   "order_r1",
			"invoice_id": "inv_1",
			"amount":     20000,
			"currency":   "INR",
			"status":     "captured",
			"notes":      map[string]any{"user_id": "user-1", "plan_name": "silver"},
		}},
	})

	out, err := f.rec.HandleWebhook(ctx, raw, razorpay.Sign(raw, secret))
	require.NoError(t, err)
	assert.Equal(t, reconciler.OutcomeIgnored, out)
	f.rec.Wait()

	_, err = f.store.FindPayment(ctx, "pay_r1")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	assert.Zero(t, f.mailer.count(email.KindPaymentSuccess))
	assert.Zero(t, f.unread(t))
}

func TestHandleWebhook_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	raw := captured(t, "pay_1", map[string]any{"user_id": "user-1", "plan_name": "gold"})
	sig := razorpay.Sign(raw, secret)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.rec.HandleWebhook(ctx, raw, sig)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	f.rec.Wait()

	assert.Equal(t, 1, f.mailer.count(email.KindPaymentSuccess))
	assert.Equal(t, 1, f.unread(t))
}

func TestHandleWebhook_IncompleteMetadata(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name string
		raw  func(t *testing.T) []byte
	}{
		{"missing user id", func(t *testing.T) []byte {
			return captured(t, "pay_1", map[string]any{"plan_name": "silver"})
		}},
		{"empty notes array", func(t *testing.T) []byte {
			return captured(t, "pay_1", []any{})
		}},
		{"unknown plan", func(t *testing.T) []byte {
			return captured(t, "pay_1", map[string]any{"user_id": "user-1", "plan_name": "diamond"})
		}},
		{"malformed body", func(*testing.T) []byte { return []byte(`{"event":`) }},
		{"unknown event", func(t *testing.T) []byte {
			return body(t, "refund.processed", map[string]any{})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)

			raw := tt.raw(t)
			out, err := f.rec.HandleWebhook(ctx, raw, razorpay.Sign(raw, secret))
			require.NoError(t, err)
			assert.Equal(t, reconciler.OutcomeIgnored, out)
			f.rec.Wait()

			_, err = f.store.FindPayment(ctx, "pay_1")
			require.ErrorIs(t, err, ledger.ErrNotFound)
			assert.Zero(t, f.mailer.count(email.KindPaymentSuccess))
		})
	}
}

func TestSavePayment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, _, err := f.rec.SavePayment(ctx, reconciler.SaveInput{
			UserID: "user-1", PaymentID: "pay_1", OrderID: "order_1", PlanID: "silver", Status: "refunded",
		})
		require.ErrorIs(t, err, reconciler.ErrInvalidStatus)
	})

	t.Run("unknown plan", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, _, err := f.rec.SavePayment(ctx, reconciler.SaveInput{
			UserID: "user-1", PaymentID: "pay_1", OrderID: "order_1", PlanID: "diamond", Status: "success",
		})
		require.ErrorIs(t, err, catalog.ErrPlanNotFound)
	})

	t.Run("client and webhook share one confirmation", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		out, rec, err := f.rec.SavePayment(ctx, reconciler.SaveInput{
			UserID: "user-1", PaymentID: "pay_1", OrderID: "order_pay_1", PlanID: "silver", Status: "pending",
		})
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeApplied, out)
		assert.Equal(t, ledger.StatusPending, rec.Status)

		out, rec, err = f.rec.SavePayment(ctx, reconciler.SaveInput{
			UserID: "user-1", PaymentID: "pay_1", OrderID: "order_pay_1", PlanID: "silver", Status: "success",
		})
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeApplied, out)
		assert.Equal(t, ledger.StatusSuccess, rec.Status)

		raw := captured(t, "pay_1", map[string]any{"user_id": "user-1", "plan_name": "silver"})
		out, err = f.rec.HandleWebhook(ctx, raw, razorpay.Sign(raw, secret))
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeDuplicate, out)

		out, rec, err = f.rec.SavePayment(ctx, reconciler.SaveInput{
			UserID: "user-1", PaymentID: "pay_1", OrderID: "order_pay_1", PlanID: "silver", Status: "failed",
		})
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeIgnored, out)
		assert.Equal(t, ledger.StatusSuccess, rec.Status)

		f.rec.Wait()
		assert.Equal(t, 1, f.mailer.count(email.KindPaymentSuccess))
		assert.Equal(t, 1, f.unread(t))
	})
}

func subscriptionEvent(t *testing.T, event, subID string) []byte {
	return body(t, event, map[string]any{
		"subscription": map[string]any{"entity": map[string]any{
			"id":      subID,
			"plan_id": "plan_SCq7atHDxZ81mD",
			"status":  "active",
		}},
	})
}

func invoicePaid(t *testing.T, subID, invoiceID string) []byte {
	return body(t, razorpay.EventInvoicePaid, map[string]any{
		"invoice": map[string]any{"entity": map[string]any{
			"id":              invoiceID,
			"subscription_id": subID,
			"payment_id":      "pay_" + invoiceID,
			"amount_paid":     20000,
		}},
	})
}

func TestSubscriptionLifecycle(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.CreateSubscription(ctx, ledger.PaymentRecord{
		UserID:             "user-1",
		PlanID:             "silver",
		Amount:             20000,
		Currency:           "INR",
		Status:             ledger.StatusPending,
		SubscriptionID:     "sub_1",
		SubscriptionStatus: ledger.SubscriptionCreated,
		CreatedAt:          f.now,
		UpdatedAt:          f.now,
	}))

	send := func(raw []byte) reconciler.Outcome {
		t.Helper()
		out, err := f.rec.HandleWebhook(ctx, raw, razorpay.Sign(raw, secret))
		require.NoError(t, err)
		return out
	}
	expiry := func() time.Time {
		t.Helper()
		rec, err := f.store.FindSubscription(ctx, "sub_1")
		require.NoError(t, err)
		require.NotNil(t, rec.ExpiryDate)
		return *rec.ExpiryDate
	}

	assert.Equal(t, reconciler.OutcomeApplied, send(subscriptionEvent(t, razorpay.EventSubscriptionActivated, "sub_1")))
	assert.Equal(t, reconciler.OutcomeDuplicate, send(subscriptionEvent(t, razorpay.EventSubscriptionActivated, "sub_1")))
	activated := expiry()
	assert.Equal(t, f.now.AddDate(0, 0, 30), activated)

	assert.Equal(t, reconciler.OutcomeApplied, send(invoicePaid(t, "sub_1", "inv_1")))
	first := expiry()
	assert.Equal(t, activated.AddDate(0, 0, 30), first)

	for range 3 {
		assert.Equal(t, reconciler.OutcomeDuplicate, send(invoicePaid(t, "sub_1", "inv_1")))
		assert.Equal(t, first, expiry())
	}

	f.now = f.now.AddDate(0, 0, 30)
	assert.Equal(t, reconciler.OutcomeApplied, send(invoicePaid(t, "sub_1", "inv_2")))
	assert.True(t, expiry().After(first))

	assert.Equal(t, reconciler.OutcomeApplied, send(subscriptionEvent(t, razorpay.EventSubscriptionCancelled, "sub_1")))
	assert.Equal(t, reconciler.OutcomeDuplicate, send(subscriptionEvent(t, razorpay.EventSubscriptionCancelled, "sub_1")))
	assert.Equal(t, reconciler.OutcomeIgnored, send(subscriptionEvent(t, razorpay.EventSubscriptionActivated, "sub_1")))

	assert.Equal(t, reconciler.OutcomeIgnored, send(invoicePaid(t, "sub_unknown", "inv_9")))

	f.rec.Wait()
	assert.Equal(t, 1, f.mailer.count(email.KindSubscriptionActive))
	assert.Equal(t, 2, f.mailer.count(email.KindSubscriptionRenewed))
	assert.Equal(t, 1, f.mailer.count(email.KindSubscriptionCancelled))

	rec, err := f.store.FindSubscription(ctx, "sub_1")
	require.NoError(t, err)
	assert.False(t, rec.Autopay)
	assert.Equal(t, ledger.SubscriptionCancelled, rec.SubscriptionStatus)
}

func TestAddonPurchases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("webhook capture is insert-only", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		raw := captured(t, "pay_a1", map[string]any{"user_id": "user-1", "addon_type": "extra_offer", "quantity": 2})
		sig := razorpay.Sign(raw, secret)

		out, err := f.rec.HandleWebhook(ctx, raw, sig)
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeApplied, out)

		out, err = f.rec.HandleWebhook(ctx, raw, sig)
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeDuplicate, out)
		f.rec.Wait()

		units, err := f.store.AddonUnits(ctx, "user-1", "extra_offer", f.now)
		require.NoError(t, err)
		assert.Equal(t, 2, units)

		a, err := f.store.FindAddon(ctx, "pay_a1")
		require.NoError(t, err)
		assert.False(t, a.Autopay)
		assert.Equal(t, f.now.AddDate(0, 0, 30), a.ExpiryDate)

		_, err = f.store.FindPayment(ctx, "pay_a1")
		require.ErrorIs(t, err, ledger.ErrNotFound)

		assert.Equal(t, 1, f.mailer.count(email.KindAddonSuccess))
		assert.Equal(t, 1, f.unread(t))
	})

	t.Run("client save validates sku and quantity", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.rec.SaveAddon(ctx, reconciler.AddonInput{UserID: "user-1", PaymentID: "pay_a2", SKU: "extra_job", Quantity: 1})
		require.ErrorIs(t, err, catalog.ErrAddonNotFound)

		_, err = f.rec.SaveAddon(ctx, reconciler.AddonInput{UserID: "user-1", PaymentID: "pay_a2", SKU: "extra_offer", Quantity: 0})
		require.ErrorIs(t, err, reconciler.ErrInvalidInput)

		out, err := f.rec.SaveAddon(ctx, reconciler.AddonInput{UserID: "user-1", PaymentID: "pay_a2", SKU: "extra_offer", Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, reconciler.OutcomeApplied, out)

		a, err := f.store.FindAddon(ctx, "pay_a2")
		require.NoError(t, err)
		assert.Equal(t, int64(15000), a.Amount)
	})
}
