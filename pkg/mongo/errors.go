package mongo

import "errors"

var (
	ErrFailedToConnectToMongo = errors.New("mongo.errors.connect_failed")
	ErrHealthcheckFailed      = errors.New("mongo.errors.healthcheck_failed")
	ErrEnsureIndexes          = errors.New("mongo.errors.ensure_indexes")
)
