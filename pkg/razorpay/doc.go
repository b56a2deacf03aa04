// Package razorpay integrates the Razorpay payment gateway.
//
// It has three parts:
//
//   - Signature checks. VerifyWebhookSignature authenticates webhook
//     deliveries (HMAC-SHA256 of the raw body with the webhook secret) and
//     VerifyPaymentSignature authenticates client checkout callbacks
//     (HMAC-SHA256 of "order_id|payment_id" with the API key secret). The two
//     secrets are different and must not be swapped.
//   - ParseEvent, which turns a webhook body into one of the typed Event
//     values: PaymentCaptured, SubscriptionActivated, InvoicePaid,
//     SubscriptionCancelled, or UnknownEvent for everything else.
//   - Gateway, the outbound capability used by checkout (orders, order
//     payments, subscriptions). Client implements it on top of the official
//     razorpay-go SDK; tests substitute a mock.
//
// Signatures must be checked against the exact bytes received. Never verify a
// body that was decoded and encoded again.
package razorpay
