// Package entitlement answers "what may this user do right now" from the
// ledger, the plan catalog and live resource counts.
//
// The active plan is the most recently updated ledger record that still
// entitles the user. Without one the user holds the catalog's default tier;
// that is the base state, not an error.
//
// A resource limit is the plan quota plus the quota granted by live add-ons.
// Offers on plans with a monthly period count only items created in the
// current UTC calendar month:
//
//	ev := entitlement.New(cat, store, counter)
//	if err := ev.Require(ctx, userID, catalog.ResourceOffers); err != nil {
//		// errors.Is(err, entitlement.ErrLimitExceeded)
//	}
package entitlement
