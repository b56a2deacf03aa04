package ledger

import (
	"time"

	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// Status is the lifecycle state of a payment record.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusExpired Status = "expired"
)

// SubscriptionStatus tracks a recurring subscription at the gateway.
type SubscriptionStatus string

const (
	SubscriptionCreated   SubscriptionStatus = "created"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Reminder identifies one expiry reminder milestone.
type Reminder string

const (
	ReminderTwoDays Reminder = "two_days"
	ReminderToday   Reminder = "today"
)

// Reminders lists every milestone in send order.
var Reminders = []Reminder{ReminderTwoDays, ReminderToday}

// PaymentRecord is one plan payment or recurring subscription.
// Field names in storage match the records already in production.
type PaymentRecord struct {
	PaymentID          string             `bson:"payment_id" json:"payment_id"`
	UserID             string             `bson:"user_id" json:"user_id"`
	OrderID            string             `bson:"order_id,omitempty" json:"order_id,omitempty"`
	PlanID             string             `bson:"plan_name" json:"plan"`
	Amount             int64              `bson:"amount" json:"amount"`
	Currency           string             `bson:"currency" json:"currency"`
	Status             Status             `bson:"status" json:"status"`
	Message            string             `bson:"message,omitempty" json:"message,omitempty"`
	ExpiryDate         *time.Time         `bson:"expiry_date,omitempty" json:"expiry_date,omitempty"`
	Autopay            bool               `bson:"autopay" json:"autopay"`
	SubscriptionID     string             `bson:"subscription_id,omitempty" json:"subscription_id,omitempty"`
	SubscriptionStatus SubscriptionStatus `bson:"subscription_status,omitempty" json:"subscription_status,omitempty"`
	LastInvoiceID      string             `bson:"last_invoice_id,omitempty" json:"-"`
	MailSent           bool               `bson:"payment_success_mail_sent" json:"-"`
	TwoDayMailSent     bool               `bson:"expiry_mail_2days_sent" json:"-"`
	TodayMailSent      bool               `bson:"expiry_mail_today_sent" json:"-"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
	ExpiredAt          *time.Time         `bson:"expired_at,omitempty" json:"expired_at,omitempty"`
}

// UnmarshalBSON accepts user_id stored as either a string or an ObjectID.
func (r *PaymentRecord) UnmarshalBSON(data []byte) error {
	type plain PaymentRecord
	return mongox.DecodeLegacy(data, (*plain)(r))
}

// Entitles reports whether the record grants its plan at now.
func (r PaymentRecord) Entitles(now time.Time) bool {
	if r.ExpiryDate == nil || !r.ExpiryDate.After(now) {
		return false
	}
	return r.Status == StatusSuccess || (r.Autopay && r.SubscriptionStatus == SubscriptionActive)
}

// ExpiryDue reports whether the sweeper should expire the record at now.
// Autopay records are driven by gateway events instead.
func (r PaymentRecord) ExpiryDue(now time.Time) bool {
	return r.Status == StatusSuccess &&
		r.ExpiryDate != nil && r.ExpiryDate.Before(now) &&
		r.ExpiredAt == nil &&
		!r.Autopay
}

// Reminded reports whether the reminder milestone was already sent.
func (r PaymentRecord) Reminded(m Reminder) bool {
	if m == ReminderTwoDays {
		return r.TwoDayMailSent
	}
	return r.TodayMailSent
}

// PaymentWrite is a status write for one external payment id.
type PaymentWrite struct {
	PaymentID  string
	UserID     string
	OrderID    string
	PlanID     string
	Amount     int64
	Currency   string
	Status     Status
	Message    string
	ExpiryDate *time.Time
	Now        time.Time
}

// Validate checks the write has what every writer must supply.
func (w PaymentWrite) Validate() error {
	switch {
	case w.PaymentID == "":
		return errorf("payment id is required")
	case w.UserID == "":
		return errorf("user id is required")
	case w.PlanID == "":
		return errorf("plan id is required")
	case w.Now.IsZero():
		return errorf("write time is required")
	}
	switch w.Status {
	case StatusPending, StatusSuccess, StatusFailed:
	default:
		return errorf("status %q cannot be written directly", w.Status)
	}
	return nil
}

// allowedFrom lists the states a write may move an existing record out of.
// Pending writes only ever create.
func allowedFrom(target Status) []Status {
	switch target {
	case StatusSuccess, StatusFailed:
		return []Status{StatusPending}
	}
	return []Status{}
}

// rejectReason explains why a write did not apply to a record in current.
func rejectReason(current, target Status) error {
	if current == target {
		return ErrAlreadyApplied
	}
	return ErrTransitionRejected
}
