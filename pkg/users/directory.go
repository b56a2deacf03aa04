package users

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Contact is how to reach a user.
type Contact struct {
	Email        string
	Name         string
	EmailEnabled bool
}

// Directory resolves users to contacts. An unknown user returns
// ErrUserNotFound.
type Directory interface {
	Contact(ctx context.Context, userID string) (Contact, error)
}

// DirectoryFunc adapts a function to Directory.
type DirectoryFunc func(ctx context.Context, userID string) (Contact, error)

func (f DirectoryFunc) Contact(ctx context.Context, userID string) (Contact, error) {
	return f(ctx, userID)
}

// CollectionUsers holds user profiles.
const CollectionUsers = "user"

// MongoDirectory reads contacts from the user collection. A hex id matches
// either an ObjectID or a string _id.
type MongoDirectory struct {
	coll *mongo.Collection
}

var _ Directory = (*MongoDirectory)(nil)

func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{coll: db.Collection(CollectionUsers)}
}

type userDoc struct {
	Email    string `bson:"email"`
	Name     string `bson:"name"`
	Settings *struct {
		Email *bool `bson:"email"`
	} `bson:"notification_settings"`
}

func (d *MongoDirectory) Contact(ctx context.Context, userID string) (Contact, error) {
	filter := userFilter(userID)

	var u userDoc
	opts := options.FindOne().SetProjection(bson.D{
		{Key: "email", Value: 1},
		{Key: "name", Value: 1},
		{Key: "notification_settings", Value: 1},
	})
	err := d.coll.FindOne(ctx, filter, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Contact{}, ErrUserNotFound
	}
	if err != nil {
		return Contact{}, errors.Join(ErrLookup, err)
	}

	// Missing settings mean email is on.
	enabled := true
	if u.Settings != nil && u.Settings.Email != nil {
		enabled = *u.Settings.Email
	}
	return Contact{Email: u.Email, Name: u.Name, EmailEnabled: enabled}, nil
}

func userFilter(userID string) bson.D {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.D{{Key: "_id", Value: userID}}
	}
	return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid, userID}}}}}
}
