package email

import (
	"context"
	"fmt"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/email/templates"
)

// Kind identifies a ledger mail.
type Kind string

const (
	KindPaymentSuccess        Kind = "payment_success"
	KindSubscriptionActive    Kind = "subscription_active"
	KindSubscriptionRenewed   Kind = "subscription_renewed"
	KindSubscriptionCancelled Kind = "subscription_cancelled"
	KindAddonSuccess          Kind = "addon_success"
	KindExpiryTwoDays         Kind = "expiry_two_days"
	KindExpiryToday           Kind = "expiry_today"
	KindPlanExpired           Kind = "plan_expired"
)

var subjects = map[Kind]string{
	KindPaymentSuccess:        "Payment Successful",
	KindSubscriptionActive:    "Autopay Activated",
	KindSubscriptionRenewed:   "Subscription Renewed",
	KindSubscriptionCancelled: "Autopay Cancelled",
	KindAddonSuccess:          "Add-on Purchased",
	KindExpiryTwoDays:         "Your Plan Will Expire in 2 Days",
	KindExpiryToday:           "Your Plan Expires Today",
	KindPlanExpired:           "Your Plan Has Expired",
}

// Data is the template payload. Amount is in minor units.
type Data struct {
	Brand      string
	PlanName   string
	Amount     int64
	Currency   string
	ExpiryDate *time.Time
	AddonType  string
	Quantity   int
	PaymentID  string
}

// Mailer renders ledger mails and hands them to a Sender.
type Mailer struct {
	sender Sender
	brand  string
}

// MailerOption configures a Mailer.
type MailerOption func(*Mailer)

// WithBrand sets the product name used in subjects and footers.
func WithBrand(brand string) MailerOption {
	return func(m *Mailer) {
		if brand != "" {
			m.brand = brand
		}
	}
}

func NewMailer(sender Sender, opts ...MailerOption) *Mailer {
	m := &Mailer{sender: sender, brand: "NallaAngadi"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send renders kind with data and delivers it to to.
func (m *Mailer) Send(ctx context.Context, kind Kind, to string, data Data) error {
	subject, ok := subjects[kind]
	if !ok || !templates.Has(string(kind)) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if data.Brand == "" {
		data.Brand = m.brand
	}

	html, err := templates.Render(string(kind), data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSendEmail, err)
	}
	return m.sender.Send(ctx, Message{
		To:      to,
		Subject: subject + " - " + m.brand,
		HTML:    html,
		Tag:     string(kind),
	})
}
