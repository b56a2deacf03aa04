package razorpay

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Webhook event names the ledger acts on.
const (
	EventPaymentCaptured       = "payment.captured"
	EventSubscriptionActivated = "subscription.activated"
	EventInvoicePaid           = "invoice.paid"
	EventSubscriptionCancelled = "subscription.cancelled"
)

// Event is a parsed webhook delivery.
type Event interface {
	Name() string
	event()
}

// PaymentCaptured is a captured payment. InvoiceID is set when the charge
// belongs to a subscription invoice.
type PaymentCaptured struct {
	PaymentID string
	OrderID   string
	InvoiceID string
	Amount    int64
	Currency  string
	Notes     Notes
}

// SubscriptionActivated fires once the customer completes the mandate.
type SubscriptionActivated struct {
	SubscriptionID string
	PlanID         string
	Notes          Notes
}

// InvoicePaid is a successful recurring charge.
type InvoicePaid struct {
	InvoiceID      string
	SubscriptionID string
	PaymentID      string
	AmountPaid     int64
}

// SubscriptionCancelled fires when autopay stops, from either side.
type SubscriptionCancelled struct {
	SubscriptionID string
	Notes          Notes
}

// UnknownEvent is any event the ledger does not handle.
type UnknownEvent struct {
	EventName string
}

func (PaymentCaptured) Name() string       { return EventPaymentCaptured }
func (SubscriptionActivated) Name() string { return EventSubscriptionActivated }
func (InvoicePaid) Name() string           { return EventInvoicePaid }
func (SubscriptionCancelled) Name() string { return EventSubscriptionCancelled }
func (e UnknownEvent) Name() string        { return e.EventName }

func (PaymentCaptured) event()       {}
func (SubscriptionActivated) event() {}
func (InvoicePaid) event()           {}
func (SubscriptionCancelled) event() {}
func (UnknownEvent) event()          {}

type envelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Subscription *struct {
			Entity subscriptionEntity `json:"entity"`
		} `json:"subscription"`
		Invoice *struct {
			Entity invoiceEntity `json:"entity"`
		} `json:"invoice"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID        string `json:"id"`
	OrderID   string `json:"order_id"`
	InvoiceID string `json:"invoice_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Notes     Notes  `json:"notes"`
}

type subscriptionEntity struct {
	ID     string `json:"id"`
	PlanID string `json:"plan_id"`
	Status string `json:"status"`
	Notes  Notes  `json:"notes"`
}

type invoiceEntity struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	PaymentID      string `json:"payment_id"`
	AmountPaid     int64  `json:"amount_paid"`
}

// ParseEvent decodes a webhook body. It returns ErrMalformedEvent when the
// body is not JSON or a handled event lacks its entity or identifier.
// Unhandled event names parse to UnknownEvent.
func ParseEvent(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}
	if env.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}

	switch env.Event {
	case EventPaymentCaptured:
		if env.Payload.Payment == nil || env.Payload.Payment.Entity.ID == "" {
			return nil, fmt.Errorf("%w: %s without payment entity", ErrMalformedEvent, env.Event)
		}
		p := env.Payload.Payment.Entity
		return PaymentCaptured{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			InvoiceID: p.InvoiceID,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Notes:     nonNil(p.Notes),
		}, nil

	case EventSubscriptionActivated, EventSubscriptionCancelled:
		if env.Payload.Subscription == nil || env.Payload.Subscription.Entity.ID == "" {
			return nil, fmt.Errorf("%w: %s without subscription entity", ErrMalformedEvent, env.Event)
		}
		s := env.Payload.Subscription.Entity
		if env.Event == EventSubscriptionCancelled {
			return SubscriptionCancelled{SubscriptionID: s.ID, Notes: nonNil(s.Notes)}, nil
		}
		return SubscriptionActivated{SubscriptionID: s.ID, PlanID: s.PlanID, Notes: nonNil(s.Notes)}, nil

	case EventInvoicePaid:
		if env.Payload.Invoice == nil || env.Payload.Invoice.Entity.SubscriptionID == "" {
			return nil, fmt.Errorf("%w: %s without subscription reference", ErrMalformedEvent, env.Event)
		}
		inv := env.Payload.Invoice.Entity
		paymentID := inv.PaymentID
		if paymentID == "" && env.Payload.Payment != nil {
			paymentID = env.Payload.Payment.Entity.ID
		}
		return InvoicePaid{
			InvoiceID:      inv.ID,
			SubscriptionID: inv.SubscriptionID,
			PaymentID:      paymentID,
			AmountPaid:     inv.AmountPaid,
		}, nil
	}

	return UnknownEvent{EventName: env.Event}, nil
}

func nonNil(n Notes) Notes {
	if n == nil {
		return Notes{}
	}
	return n
}
