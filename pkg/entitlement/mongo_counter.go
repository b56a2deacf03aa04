package entitlement

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// Collections holding user-owned resources.
const (
	CollectionShops  = "shop"
	CollectionOffers = "offers"
)

// MongoCounter counts shop and offer documents by owner.
type MongoCounter struct {
	colls map[catalog.Resource]*mongo.Collection
}

var _ Counter = (*MongoCounter)(nil)

func NewMongoCounter(db *mongo.Database) *MongoCounter {
	return &MongoCounter{colls: map[catalog.Resource]*mongo.Collection{
		catalog.ResourceShops:  db.Collection(CollectionShops),
		catalog.ResourceOffers: db.Collection(CollectionOffers),
	}}
}

func (c *MongoCounter) Count(ctx context.Context, userID string, r catalog.Resource, w *Window) (int64, error) {
	coll, ok := c.colls[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResource, r)
	}

	filter := mongox.UserIDFilter("user_id", userID)
	if w != nil {
		filter = bson.D{{Key: "$and", Value: bson.A{
			filter,
			bson.D{{Key: "created_at", Value: bson.D{
				{Key: "$gte", Value: w.Start},
				{Key: "$lt", Value: w.End},
			}}},
		}}}
	}

	n, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Join(ErrFailedToCountUsage, err)
	}
	return n, nil
}
