// Package metrics holds the Prometheus collectors the ledger exports.
//
// Constructors take a prometheus.Registerer; a nil registerer returns a
// collector whose methods are no-ops, so components can be built without
// metrics in tests.
package metrics
