package razorpay

import "errors"

var (
	ErrMissingKeyID         = errors.New("razorpay.errors.missing_key_id")
	ErrMissingKeySecret     = errors.New("razorpay.errors.missing_key_secret")
	ErrMissingWebhookSecret = errors.New("razorpay.errors.missing_webhook_secret")
	ErrMalformedEvent       = errors.New("razorpay.errors.malformed_event")
	ErrGatewayRequest       = errors.New("razorpay.errors.gateway_request_failed")
	ErrUnexpectedResponse   = errors.New("razorpay.errors.unexpected_response")
)
