package notifications

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// CollectionName is where notifications are stored.
const CollectionName = "notifications"

// MongoStorage stores notifications in MongoDB.
type MongoStorage struct {
	coll *mongo.Collection
}

var _ Storage = (*MongoStorage)(nil)

func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{coll: db.Collection(CollectionName)}
}

// Indexes returns the index models used by the storage.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		CollectionName: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}
}

func (s *MongoStorage) Create(ctx context.Context, notif Notification) error {
	if err := validate(notif); err != nil {
		return err
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now()
	}
	if _, err := s.coll.InsertOne(ctx, notif); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, userID, notifID string) (*Notification, error) {
	var n Notification
	filter := append(mongox.UserIDFilter("user_id", userID), bson.E{Key: "id", Value: notifID})
	err := s.coll.FindOne(ctx, filter).Decode(&n)
	switch {
	case err == nil:
		return &n, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotificationNotFound
	default:
		return nil, errors.Join(ErrStorage, err)
	}
}

func (s *MongoStorage) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	filter := mongox.UserIDFilter("user_id", userID)
	if opts.OnlyUnread {
		filter = append(filter, bson.E{Key: "read", Value: false})
	}
	if len(opts.Kinds) > 0 {
		filter = append(filter, bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: opts.Kinds}}})
	}

	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Offset > 0 {
		find.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, find)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return out, nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		append(mongox.UserIDFilter("user_id", userID),
			bson.E{Key: "id", Value: bson.D{{Key: "$in", Value: notifIDs}}},
			bson.E{Key: "read", Value: false},
		),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "read", Value: true},
			{Key: "read_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *MongoStorage) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.coll.CountDocuments(ctx,
		append(mongox.UserIDFilter("user_id", userID), bson.E{Key: "read", Value: false}))
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	return int(n), nil
}
