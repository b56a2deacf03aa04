// Package billing mounts the payment, autopay and entitlement endpoints.
//
// The gateway webhook is unauthenticated and verified by signature. Every
// other route requires a bearer token; the authenticated user id is exposed
// to handlers through Context.
//
//	r.Mount("/", billing.New(rec, checkoutSvc, evaluator,
//		billing.WithAuth(jwt.Middleware(tokens)),
//		billing.WithNotifications(notifier),
//		billing.WithPublicKey(cfg.Razorpay.KeyID),
//	).Handle())
package billing
