// Package ledger is the authoritative record of plan payments, recurring
// subscriptions and add-on purchases.
//
// A PaymentRecord is keyed by the gateway's external payment id and is never
// deleted. Whichever writer sees a payment first (client callback or webhook)
// creates it; later writers update it. Creation-only fields go through
// $setOnInsert and mutable fields through $set, so a late writer never resets
// side-effect flags. Recurring subscriptions are stored as PaymentRecords
// keyed by their subscription id.
//
// Status only moves forward:
//
//	absent ─► pending ─► success ─► expired
//	   │         │
//	   └─────────┴─► failed
//
// Every transition in Store is a single conditional update in the backing
// store. Read-modify-write in calling code is never needed for correctness
// under concurrent duplicate deliveries. Claim* methods flip a side-effect
// flag from false to true and report whether the caller won; only the winner
// dispatches the email or notification.
//
// AddonPurchase rows are insert-only apart from their mail flag and drop out
// of quota sums once their expiry passes.
//
// Two implementations are provided: MongoStore for production and
// MemoryStore for tests and local development.
package ledger
