package sweeper

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/entitlement"
	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// StatusPaymentPending is the resource status that hides a shop or offer
// until its owner pays again.
const StatusPaymentPending = "payment_pending"

// ResourceLocker disables every resource a user owns. It must be idempotent.
type ResourceLocker interface {
	LockResources(ctx context.Context, userID string) error
}

// ResourceLockerFunc adapts a function to ResourceLocker.
type ResourceLockerFunc func(ctx context.Context, userID string) error

func (f ResourceLockerFunc) LockResources(ctx context.Context, userID string) error {
	return f(ctx, userID)
}

// MongoLocker sets the status of a user's shops and offers.
type MongoLocker struct {
	colls []*mongo.Collection
}

var _ ResourceLocker = (*MongoLocker)(nil)

func NewMongoLocker(db *mongo.Database) *MongoLocker {
	return &MongoLocker{colls: []*mongo.Collection{
		db.Collection(entitlement.CollectionShops),
		db.Collection(entitlement.CollectionOffers),
	}}
}

func (l *MongoLocker) LockResources(ctx context.Context, userID string) error {
	filter := mongox.UserIDFilter("user_id", userID)
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: StatusPaymentPending}}}}
	for _, coll := range l.colls {
		if _, err := coll.UpdateMany(ctx, filter, update); err != nil {
			return errors.Join(ErrFailedToLock, err)
		}
	}
	return nil
}
