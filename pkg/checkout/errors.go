package checkout

import "errors"

var (
	ErrInvalidPaymentSignature = errors.New("checkout.errors.invalid_payment_signature")
	ErrInvalidInput            = errors.New("checkout.errors.invalid_input")
	ErrNoPayments              = errors.New("checkout.errors.no_payments_for_order")
	ErrAutopayActive           = errors.New("checkout.errors.autopay_already_active")
	ErrNoActiveAutopay         = errors.New("checkout.errors.no_active_autopay")
	ErrSamePlan                = errors.New("checkout.errors.same_plan")
	ErrGateway                 = errors.New("checkout.errors.gateway_failure")
)
