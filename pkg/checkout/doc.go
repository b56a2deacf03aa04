// Package checkout drives the gateway side of buying a plan or an add-on.
//
// It creates one-time orders and recurring subscriptions at the gateway,
// verifies the checkout callback signatures and hands verified results to
// the reconciler, which owns every ledger transition. Plan changes and
// autopay cancellation are also here since they start with a gateway call.
//
// Usage:
//
//	svc := checkout.New(cat, gateway, store, rec, checkout.WithEffects(fx))
//	order, err := svc.CreateOrder(ctx, userID, "silver")
//	// ... client pays ...
//	out, rec, err := svc.VerifyPayment(ctx, checkout.VerifyInput{...})
package checkout
