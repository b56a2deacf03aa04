package ledger

import (
	"fmt"
	"time"

	mongox "github.com/sakthiswaran2705/NallaAngadi/pkg/mongo"
)

// AddonValidity is how long an add-on stays active after purchase.
const AddonValidity = 30 * 24 * time.Hour

// AddonPurchase is a one-time add-on bought with a single payment.
type AddonPurchase struct {
	PaymentID  string    `bson:"payment_id" json:"payment_id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	OrderID    string    `bson:"order_id,omitempty" json:"order_id,omitempty"`
	SKU        string    `bson:"addon_type" json:"addon_type"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	Amount     int64     `bson:"amount" json:"amount"`
	Currency   string    `bson:"currency" json:"currency"`
	Status     Status    `bson:"status" json:"status"`
	Autopay    bool      `bson:"autopay" json:"autopay"`
	ExpiryDate time.Time `bson:"expiry_date" json:"expiry_date"`
	MailSent   bool      `bson:"mail_sent" json:"-"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// UnmarshalBSON accepts user_id stored as either a string or an ObjectID.
func (a *AddonPurchase) UnmarshalBSON(data []byte) error {
	type plain AddonPurchase
	return mongox.DecodeLegacy(data, (*plain)(a))
}

// AddonInput describes a captured add-on payment.
type AddonInput struct {
	PaymentID string
	UserID    string
	OrderID   string
	SKU       string
	Quantity  int
	Amount    int64
	Currency  string
	Autopay   bool
	Validity  time.Duration // zero means AddonValidity
	Now       time.Time
}

// NewAddonPurchase builds a successful purchase. Add-ons are never recurring,
// so a request with Autopay set fails with ErrAddonAutopay.
func NewAddonPurchase(in AddonInput) (AddonPurchase, error) {
	if in.Autopay {
		return AddonPurchase{}, ErrAddonAutopay
	}
	switch {
	case in.PaymentID == "":
		return AddonPurchase{}, errorf("payment id is required")
	case in.UserID == "":
		return AddonPurchase{}, errorf("user id is required")
	case in.SKU == "":
		return AddonPurchase{}, errorf("addon type is required")
	case in.Quantity <= 0:
		return AddonPurchase{}, errorf("quantity must be positive, got %d", in.Quantity)
	case in.Now.IsZero():
		return AddonPurchase{}, errorf("purchase time is required")
	}

	validity := in.Validity
	if validity <= 0 {
		validity = AddonValidity
	}

	return AddonPurchase{
		PaymentID:  in.PaymentID,
		UserID:     in.UserID,
		OrderID:    in.OrderID,
		SKU:        in.SKU,
		Quantity:   in.Quantity,
		Amount:     in.Amount,
		Currency:   in.Currency,
		Status:     StatusSuccess,
		ExpiryDate: in.Now.Add(validity),
		CreatedAt:  in.Now,
	}, nil
}

// Counts reports whether the add-on contributes quota at now.
func (a AddonPurchase) Counts(now time.Time) bool {
	return a.Status == StatusSuccess && !a.Autopay && a.ExpiryDate.After(now)
}

func errorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidRecord}, args...)...)
}
