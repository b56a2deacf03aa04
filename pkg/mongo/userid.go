package mongo

import (
	"bytes"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UserIDFilter matches field against both representations a user id may
// have been stored in: the plain string and, when the string is a valid hex
// ObjectID, the native ObjectID.
func UserIDFilter(field, userID string) bson.D {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return bson.D{{Key: field, Value: userID}}
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: field, Value: userID}},
		bson.D{{Key: field, Value: oid}},
	}}}
}

// DecodeLegacy decodes a raw document into v, reading ObjectID values into
// string fields as hex. Older records store user_id as an ObjectID while
// the Go types keep it as a string. Types calling this from UnmarshalBSON
// pass a method-free alias of themselves.
func DecodeLegacy(data []byte, v any) error {
	dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(data)))
	dec.ObjectIDAsHexString()
	return dec.Decode(v)
}
