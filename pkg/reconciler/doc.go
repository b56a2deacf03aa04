// Package reconciler applies gateway events and client-reported payment
// statuses to the ledger.
//
// Every event maps to one conditional write in the ledger store. The write
// reports whether it matched; side effects (mail, in-app notification) are
// dispatched only when it did, and confirmation mails additionally go through
// the store's atomic claim so a replayed event never mails twice.
//
// Webhook bodies are verified against the raw bytes before anything is
// parsed. Events with incomplete metadata, unknown plans or unknown
// subscriptions are acknowledged as OutcomeIgnored and leave the ledger
// untouched.
//
// Side effects run on an async.Dispatcher: their failures are logged and
// counted but never fail the ledger write or the response to the gateway.
package reconciler
