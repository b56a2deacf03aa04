// Package mongo wraps the official MongoDB v2 driver with the connection,
// index and health-check helpers the ledger services share.
//
// New retries the initial connect and ping, NewWithDatabase returns the
// configured database handle, EnsureIndexes applies per-collection index
// models at startup and Healthcheck plugs into the readiness probe.
//
// UserIDFilter exists because user ids reach the ledger from several writers
// and historical documents hold either the string form or a native ObjectID.
package mongo
