package ledger

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// Collection names.
const (
	CollectionPayments = "payments"
	CollectionAddons   = "addon_payments"
)

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	payments *mongo.Collection
	addons   *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		payments: db.Collection(CollectionPayments),
		addons:   db.Collection(CollectionAddons),
	}
}

// Indexes returns the index models the store relies on. The unique index on
// payment_id is what turns a concurrent duplicate insert into a duplicate
// key error instead of a second record.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionPayments: {
			{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "subscription_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiry_date", Value: 1}}},
		},
		CollectionAddons: {
			{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "addon_type", Value: 1}, {Key: "expiry_date", Value: 1}}},
		},
	}
}

func (s *MongoStore) UpsertPayment(ctx context.Context, w PaymentWrite) (PaymentRecord, error) {
	if err := w.Validate(); err != nil {
		return PaymentRecord{}, err
	}

	filter := bson.D{
		{Key: "payment_id", Value: w.PaymentID},
		{Key: "status", Value: bson.D{{Key: "$in", Value: allowedFrom(w.Status)}}},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "user_id", Value: w.UserID},
			{Key: "order_id", Value: w.OrderID},
			{Key: "plan_name", Value: w.PlanID},
			{Key: "amount", Value: w.Amount},
			{Key: "currency", Value: w.Currency},
			{Key: "status", Value: w.Status},
			{Key: "message", Value: w.Message},
			{Key: "expiry_date", Value: w.ExpiryDate},
			{Key: "updated_at", Value: w.Now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "created_at", Value: w.Now},
			{Key: "autopay", Value: false},
			{Key: "payment_success_mail_sent", Value: false},
			{Key: "expiry_mail_2days_sent", Value: false},
			{Key: "expiry_mail_today_sent", Value: false},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec PaymentRecord
	err := s.payments.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec)
	switch {
	case err == nil:
		return rec, nil
	case mongo.IsDuplicateKeyError(err):
		// The record exists in a state the write may not leave.
		current, findErr := s.FindPayment(ctx, w.PaymentID)
		if findErr != nil {
			return PaymentRecord{}, findErr
		}
		return current, rejectReason(current.Status, w.Status)
	default:
		return PaymentRecord{}, errors.Join(ErrStore, err)
	}
}

func (s *MongoStore) ClaimPaymentMail(ctx context.Context, paymentID string) (bool, error) {
	return s.claim(ctx, s.payments, paymentID, "payment_success_mail_sent")
}

func (s *MongoStore) FindPayment(ctx context.Context, paymentID string) (PaymentRecord, error) {
	return findOne[PaymentRecord](ctx, s.payments, bson.D{{Key: "payment_id", Value: paymentID}})
}

func (s *MongoStore) CreateSubscription(ctx context.Context, rec PaymentRecord) error {
	if rec.SubscriptionID == "" || rec.UserID == "" {
		return errorf("subscription id and user id are required")
	}
	if rec.PaymentID == "" {
		rec.PaymentID = rec.SubscriptionID
	}
	if _, err := s.payments.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *MongoStore) FindSubscription(ctx context.Context, subscriptionID string) (PaymentRecord, error) {
	return findOne[PaymentRecord](ctx, s.payments, bson.D{{Key: "subscription_id", Value: subscriptionID}})
}

func (s *MongoStore) FindActiveSubscription(ctx context.Context, userID string) (PaymentRecord, error) {
	filter := bson.D{{Key: "$and", Value: bson.A{
		mongox.UserIDFilter("user_id", userID),
		bson.D{
			{Key: "autopay", Value: true},
			{Key: "subscription_status", Value: SubscriptionActive},
		},
	}}}
	return findOne[PaymentRecord](ctx, s.payments, filter, latestFirst())
}

func (s *MongoStore) ActivateSubscription(ctx context.Context, subscriptionID string, expiry *time.Time, now time.Time) (PaymentRecord, error) {
	filter := bson.D{
		{Key: "subscription_id", Value: subscriptionID},
		{Key: "subscription_status", Value: bson.D{{Key: "$nin", Value: bson.A{SubscriptionActive, SubscriptionCancelled}}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "autopay", Value: true},
		{Key: "subscription_status", Value: SubscriptionActive},
		{Key: "expiry_date", Value: expiry},
		{Key: "updated_at", Value: now},
	}}}

	rec, err := s.transition(ctx, filter, update)
	if !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	current, err := s.FindSubscription(ctx, subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	if current.SubscriptionStatus == SubscriptionActive {
		return current, ErrAlreadyApplied
	}
	return current, ErrTransitionRejected
}

func (s *MongoStore) RenewSubscription(ctx context.Context, subscriptionID, invoiceID string, period time.Duration, now time.Time) (PaymentRecord, error) {
	filter := bson.D{
		{Key: "subscription_id", Value: subscriptionID},
		{Key: "last_invoice_id", Value: bson.D{{Key: "$ne", Value: invoiceID}}},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: StatusExpired}}},
	}
	// Pipeline update so the new expiry is computed from the stored value in
	// the same write: max(expiry_date, now) + period. $max skips a missing
	// expiry_date.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "expiry_date", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$max", Value: bson.A{"$expiry_date", now}}},
				period.Milliseconds(),
			}}}},
			{Key: "status", Value: StatusSuccess},
			{Key: "last_invoice_id", Value: invoiceID},
			{Key: "updated_at", Value: now},
		}}},
	}

	rec, err := s.transition(ctx, filter, update)
	if !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	current, err := s.FindSubscription(ctx, subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	if current.LastInvoiceID == invoiceID {
		return current, ErrAlreadyApplied
	}
	return current, ErrTransitionRejected
}

func (s *MongoStore) CancelSubscription(ctx context.Context, subscriptionID string, now time.Time) (PaymentRecord, error) {
	filter := bson.D{
		{Key: "subscription_id", Value: subscriptionID},
		{Key: "subscription_status", Value: bson.D{{Key: "$ne", Value: SubscriptionCancelled}}},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "autopay", Value: false},
		{Key: "subscription_status", Value: SubscriptionCancelled},
		{Key: "updated_at", Value: now},
	}}}

	rec, err := s.transition(ctx, filter, update)
	if !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	current, err := s.FindSubscription(ctx, subscriptionID)
	if err != nil {
		return PaymentRecord{}, err
	}
	return current, ErrAlreadyApplied
}

func (s *MongoStore) InsertAddon(ctx context.Context, a AddonPurchase) error {
	if a.Autopay {
		return ErrAddonAutopay
	}
	if _, err := s.addons.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Join(ErrStore, err)
	}
	return nil
}

func (s *MongoStore) ClaimAddonMail(ctx context.Context, paymentID string) (bool, error) {
	return s.claim(ctx, s.addons, paymentID, "mail_sent")
}

func (s *MongoStore) FindAddon(ctx context.Context, paymentID string) (AddonPurchase, error) {
	return findOne[AddonPurchase](ctx, s.addons, bson.D{{Key: "payment_id", Value: paymentID}})
}

func (s *MongoStore) ActivePayment(ctx context.Context, userID string, now time.Time) (PaymentRecord, error) {
	filter := bson.D{{Key: "$and", Value: bson.A{
		mongox.UserIDFilter("user_id", userID),
		bson.D{{Key: "expiry_date", Value: bson.D{{Key: "$gt", Value: now}}}},
		bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "status", Value: StatusSuccess}},
			bson.D{
				{Key: "autopay", Value: true},
				{Key: "subscription_status", Value: SubscriptionActive},
			},
		}}},
	}}}
	return findOne[PaymentRecord](ctx, s.payments, filter, latestFirst())
}

func (s *MongoStore) AddonUnits(ctx context.Context, userID, sku string, now time.Time) (int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$and", Value: bson.A{
			mongox.UserIDFilter("user_id", userID),
			bson.D{
				{Key: "addon_type", Value: sku},
				{Key: "status", Value: StatusSuccess},
				{Key: "autopay", Value: bson.D{{Key: "$ne", Value: true}}},
				{Key: "expiry_date", Value: bson.D{{Key: "$gt", Value: now}}},
			},
		}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$quantity"}}},
		}}},
	}

	cur, err := s.addons.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	var rows []struct {
		Total int `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, errors.Join(ErrStore, err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func (s *MongoStore) ExpiryCandidates(ctx context.Context, now time.Time, limit int) ([]PaymentRecord, error) {
	filter := bson.D{
		{Key: "status", Value: StatusSuccess},
		{Key: "expiry_date", Value: bson.D{{Key: "$lt", Value: now}}},
		{Key: "expired_at", Value: nil},
		{Key: "autopay", Value: bson.D{{Key: "$ne", Value: true}}},
		{Key: "user_id", Value: bson.D{{Key: "$nin", Value: bson.A{nil, ""}}}},
	}
	return s.list(ctx, filter, limit)
}

func (s *MongoStore) MarkExpired(ctx context.Context, paymentID string, now time.Time) (bool, error) {
	res, err := s.payments.UpdateOne(ctx,
		bson.D{
			{Key: "payment_id", Value: paymentID},
			{Key: "status", Value: StatusSuccess},
			{Key: "expired_at", Value: nil},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: StatusExpired},
			{Key: "expired_at", Value: now},
		}}},
	)
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) ReminderCandidates(ctx context.Context, m Reminder, from, to time.Time, limit int) ([]PaymentRecord, error) {
	filter := bson.D{
		{Key: "status", Value: StatusSuccess},
		{Key: "autopay", Value: bson.D{{Key: "$ne", Value: true}}},
		{Key: "expiry_date", Value: bson.D{{Key: "$gte", Value: from}, {Key: "$lt", Value: to}}},
		{Key: reminderField(m), Value: bson.D{{Key: "$ne", Value: true}}},
	}
	return s.list(ctx, filter, limit)
}

func (s *MongoStore) ClaimReminder(ctx context.Context, paymentID string, m Reminder) (bool, error) {
	return s.claim(ctx, s.payments, paymentID, reminderField(m))
}

// claim flips a boolean flag from unset/false to true.
func (s *MongoStore) claim(ctx context.Context, coll *mongo.Collection, paymentID, field string) (bool, error) {
	res, err := coll.UpdateOne(ctx,
		bson.D{
			{Key: "payment_id", Value: paymentID},
			{Key: field, Value: bson.D{{Key: "$ne", Value: true}}},
		},
		bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: true}}}},
	)
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}
	if res.MatchedCount == 1 {
		return true, nil
	}
	n, err := coll.CountDocuments(ctx, bson.D{{Key: "payment_id", Value: paymentID}})
	if err != nil {
		return false, errors.Join(ErrStore, err)
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// transition runs a conditional FindOneAndUpdate and maps "no match" to
// ErrNotFound so callers can work out why.
func (s *MongoStore) transition(ctx context.Context, filter, update any) (PaymentRecord, error) {
	var rec PaymentRecord
	err := s.payments.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return PaymentRecord{}, ErrNotFound
	default:
		return PaymentRecord{}, errors.Join(ErrStore, err)
	}
}

func (s *MongoStore) list(ctx context.Context, filter bson.D, limit int) ([]PaymentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expiry_date", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.payments.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	var out []PaymentRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStore, err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...options.Lister[options.FindOneOptions]) (T, error) {
	var v T
	err := coll.FindOne(ctx, filter, opts...).Decode(&v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return v, ErrNotFound
	default:
		return v, errors.Join(ErrStore, err)
	}
}

func latestFirst() options.Lister[options.FindOneOptions] {
	return options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
}

func reminderField(m Reminder) string {
	if m == ReminderTwoDays {
		return "expiry_mail_2days_sent"
	}
	return "expiry_mail_today_sent"
}
