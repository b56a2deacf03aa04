package billing

type planRequest struct {
	PlanID string `json:"plan_id" validate:"required"`
}

type verifyRequest struct {
	PlanID    string `json:"plan_id" validate:"required"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type saveRequest struct {
	PlanID    string `json:"plan_id" validate:"required"`
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Status    string `json:"status" validate:"required"`
	Message   string `json:"message"`
}

type checkOrderRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

type addonOrderRequest struct {
	AddonType string `json:"addon_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type addonVerifyRequest struct {
	AddonType string `json:"addon_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type quotaRequest struct {
	Resource string `path:"resource"`
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

type noRequest struct{}

type orderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id,omitempty"`
}

type paymentResponse struct {
	Outcome string `json:"outcome"`
	Plan    string `json:"plan,omitempty"`
	Status  string `json:"status,omitempty"`
	Expiry  string `json:"expiry_date,omitempty"`
}

type subscriptionResponse struct {
	SubscriptionID string `json:"subscription_id"`
	PlanID         string `json:"plan_id"`
	Status         string `json:"status"`
	ShortURL       string `json:"short_url,omitempty"`
}
