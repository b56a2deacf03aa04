package notifications

import (
	"time"

	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// Kind is the event a notification reports.
type Kind string

const (
	KindPaymentSuccess        Kind = "payment_success"
	KindSubscriptionActive    Kind = "subscription_active"
	KindSubscriptionRenewed   Kind = "subscription_renewed"
	KindSubscriptionCancelled Kind = "subscription_cancelled"
	KindPlanChanged           Kind = "plan_changed"
	KindAddonSuccess          Kind = "addon_success"
	KindPlanExpired           Kind = "plan_expired"
)

// Notification is one in-app message for a user.
type Notification struct {
	ID        string     `bson:"id" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Kind      Kind       `bson:"type" json:"type"`
	Title     string     `bson:"title" json:"title"`
	Message   string     `bson:"message" json:"message"`
	RelatedID string     `bson:"related_id,omitempty" json:"related_id,omitempty"`
	Read      bool       `bson:"read" json:"read"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
}

func (n *Notification) UnmarshalBSON(data []byte) error {
	type plain Notification
	return mongox.DecodeLegacy(data, (*plain)(n))
}

// MarkAsRead marks the notification as read at now.
func (n *Notification) MarkAsRead(now time.Time) {
	n.Read = true
	n.ReadAt = &now
}
