package ledger_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// openMongoStore connects to MONGODB_URL and returns a store on a fresh
// database that is dropped when the test ends.
func openMongoStore(t *testing.T) (*ledger.MongoStore, func(doc bson.D)) {
	t.Helper()

	url := os.Getenv("MONGODB_URL")
	if url == "" {
		t.Skip("MONGODB_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := mongox.New(ctx, mongox.Config{
		ConnectionURL:  url,
		ConnectTimeout: 5 * time.Second,
		RetryAttempts:  1,
	})
	require.NoError(t, err)

	db := client.Database("ledger_test_" + uuid.NewString()[:8])
	require.NoError(t, mongox.EnsureIndexes(ctx, db, ledger.Indexes()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	insert := func(doc bson.D) {
		_, err := db.Collection(ledger.CollectionPayments).InsertOne(context.Background(), doc)
		require.NoError(t, err)
	}
	return ledger.NewMongoStore(db), insert
}

func TestMongoStore_UpsertPayment(t *testing.T) {
	s, _ := openMongoStore(t)
	ctx := context.Background()

	rec, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, rec.Status)

	rec, err = s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess))
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusSuccess, rec.Status)
	assert.True(t, now.Equal(rec.CreatedAt))

	t.Run("replay is already applied", func(t *testing.T) {
		_, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusSuccess))
		require.ErrorIs(t, err, ledger.ErrAlreadyApplied)
	})

	t.Run("backward move is rejected", func(t *testing.T) {
		current, err := s.UpsertPayment(ctx, write("pay_1", ledger.StatusPending))
		require.ErrorIs(t, err, ledger.ErrTransitionRejected)
		assert.Equal(t, ledger.StatusSuccess, current.Status)

		_, err = s.UpsertPayment(ctx, write("pay_1", ledger.StatusFailed))
		require.ErrorIs(t, err, ledger.ErrTransitionRejected)
	})

	t.Run("mail claim wins once", func(t *testing.T) {
		won, err := s.ClaimPaymentMail(ctx, "pay_1")
		require.NoError(t, err)
		assert.True(t, won)

		won, err = s.ClaimPaymentMail(ctx, "pay_1")
		require.NoError(t, err)
		assert.False(t, won)

		_, err = s.ClaimPaymentMail(ctx, "pay_missing")
		require.ErrorIs(t, err, ledger.ErrNotFound)
	})
}

func TestMongoStore_RenewSubscription(t *testing.T) {
	s, _ := openMongoStore(t)
	ctx := context.Background()
	period := 30 * 24 * time.Hour

	require.NoError(t, s.CreateSubscription(ctx, ledger.PaymentRecord{
		SubscriptionID:     "sub_1",
		UserID:             "user-1",
		PlanID:             "silver",
		Status:             ledger.StatusPending,
		SubscriptionStatus: ledger.SubscriptionCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	}))
	require.ErrorIs(t, s.CreateSubscription(ctx, ledger.PaymentRecord{SubscriptionID: "sub_1", UserID: "user-1"}), ledger.ErrDuplicate)

	activeUntil := now.Add(period)
	rec, err := s.ActivateSubscription(ctx, "sub_1", &activeUntil, now)
	require.NoError(t, err)
	assert.True(t, rec.Autopay)
	_, err = s.ActivateSubscription(ctx, "sub_1", &activeUntil, now)
	require.ErrorIs(t, err, ledger.ErrAlreadyApplied)

	// Renewing before expiry stacks on the stored expiry.
	rec, err = s.RenewSubscription(ctx, "sub_1", "inv_1", period, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, rec.ExpiryDate)
	assert.True(t, now.Add(2*period).Equal(*rec.ExpiryDate), "got %s", rec.ExpiryDate)
	assert.Equal(t, "inv_1", rec.LastInvoiceID)

	_, err = s.RenewSubscription(ctx, "sub_1", "inv_1", period, now.Add(48*time.Hour))
	require.ErrorIs(t, err, ledger.ErrAlreadyApplied)

	// Renewing after a lapse counts from now.
	late := now.Add(3 * period)
	rec, err = s.RenewSubscription(ctx, "sub_1", "inv_2", period, late)
	require.NoError(t, err)
	assert.True(t, late.Add(period).Equal(*rec.ExpiryDate), "got %s", rec.ExpiryDate)

	rec, err = s.CancelSubscription(ctx, "sub_1", late)
	require.NoError(t, err)
	assert.Equal(t, ledger.SubscriptionCancelled, rec.SubscriptionStatus)
	_, err = s.CancelSubscription(ctx, "sub_1", late)
	require.ErrorIs(t, err, ledger.ErrAlreadyApplied)
}

func TestMongoStore_Expiry(t *testing.T) {
	s, insert := openMongoStore(t)
	ctx := context.Background()

	oid := bson.NewObjectID()
	insert(bson.D{
		{Key: "payment_id", Value: "pay_legacy"},
		{Key: "user_id", Value: oid},
		{Key: "plan_name", Value: "silver"},
		{Key: "status", Value: "success"},
		{Key: "autopay", Value: false},
		{Key: "expiry_date", Value: now.Add(-time.Hour)},
		{Key: "updated_at", Value: now.Add(-48 * time.Hour)},
	})

	recs, err := s.ExpiryCandidates(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, oid.Hex(), recs[0].UserID)

	expired, err := s.MarkExpired(ctx, "pay_legacy", now)
	require.NoError(t, err)
	assert.True(t, expired)

	expired, err = s.MarkExpired(ctx, "pay_legacy", now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, expired)

	rec, err := s.FindPayment(ctx, "pay_legacy")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusExpired, rec.Status)
	require.NotNil(t, rec.ExpiredAt)
	assert.True(t, now.Equal(*rec.ExpiredAt))

	recs, err = s.ExpiryCandidates(ctx, now, 10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMongoStore_ActivePaymentLegacyUser(t *testing.T) {
	s, insert := openMongoStore(t)
	ctx := context.Background()

	oid := bson.NewObjectID()
	insert(bson.D{
		{Key: "payment_id", Value: "pay_gold"},
		{Key: "user_id", Value: oid},
		{Key: "plan_name", Value: "gold"},
		{Key: "status", Value: "success"},
		{Key: "expiry_date", Value: now.AddDate(0, 0, 10)},
		{Key: "updated_at", Value: now},
	})

	rec, err := s.ActivePayment(ctx, oid.Hex(), now)
	require.NoError(t, err)
	assert.Equal(t, "gold", rec.PlanID)
	assert.Equal(t, oid.Hex(), rec.UserID)
}
