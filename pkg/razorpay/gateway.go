package razorpay

import "context"

// Gateway is the outbound surface checkout needs from the payment gateway.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	// FetchOrderPayments lists payment attempts for an order, oldest first.
	FetchOrderPayments(ctx context.Context, orderID string) ([]Payment, error)
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// VerifyPaymentSignature checks a checkout callback with the API secret.
	VerifyPaymentSignature(orderID, paymentID, signature string) bool
}

// OrderRequest describes a one-time order.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    Notes
}

// Order is a created gateway order.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Payment is one payment attempt on an order.
type Payment struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Notes    Notes  `json:"notes"`
}

// SubscriptionRequest describes a recurring subscription.
type SubscriptionRequest struct {
	PlanID         string
	TotalCount     int
	CustomerNotify bool
	Notes          Notes
}

// Subscription is a created gateway subscription.
type Subscription struct {
	ID       string `json:"id"`
	PlanID   string `json:"plan_id"`
	Status   string `json:"status"`
	ShortURL string `json:"short_url"`
}
