package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
)

// AddonInput is a verified client-side add-on purchase.
type AddonInput struct {
	UserID    string
	PaymentID string
	OrderID   string
	SKU       string
	Quantity  int
}

func (r *Reconciler) applyAddonCaptured(ctx context.Context, e razorpay.PaymentCaptured) (Outcome, error) {
	userID := e.Notes.Get(razorpay.NoteUserID)
	skuID := e.Notes.Get(razorpay.NoteAddonType)
	if userID == "" {
		return r.ignore(ctx, "add-on payment without user reference",
			logger.PaymentID(e.PaymentID), logger.AddonID(skuID))
	}

	sku, err := r.catalog.LookupAddon(skuID)
	if err != nil {
		return r.ignore(ctx, "payment for unknown add-on",
			logger.PaymentID(e.PaymentID), logger.AddonID(skuID))
	}

	qty := 1
	if raw := e.Notes.Get(razorpay.NoteQuantity); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return r.ignore(ctx, "add-on payment with invalid quantity",
				logger.PaymentID(e.PaymentID), logger.AddonID(skuID))
		}
		qty = n
	}

	return r.insertAddon(ctx, sku, ledger.AddonInput{
		PaymentID: e.PaymentID,
		UserID:    userID,
		OrderID:   e.OrderID,
		SKU:       sku.ID,
		Quantity:  qty,
		Amount:    e.Amount,
		Currency:  currencyOr(e.Currency, sku.UnitPrice.Currency),
		Validity:  sku.Validity(),
		Now:       r.now(),
	})
}

// SaveAddon records a verified add-on purchase. Add-ons are insert-only: a
// second save of the same payment id is OutcomeDuplicate.
func (r *Reconciler) SaveAddon(ctx context.Context, in AddonInput) (Outcome, error) {
	if in.UserID == "" || in.PaymentID == "" {
		return OutcomeIgnored, fmt.Errorf("%w: user and payment ids are required", ErrInvalidInput)
	}
	sku, err := r.catalog.LookupAddon(in.SKU)
	if err != nil {
		return OutcomeIgnored, err
	}
	if in.Quantity <= 0 || (sku.MaxQuantity > 0 && in.Quantity > sku.MaxQuantity) {
		return OutcomeIgnored, fmt.Errorf("%w: quantity %d out of range", ErrInvalidInput, in.Quantity)
	}

	price := sku.Price(in.Quantity)
	out, err := r.insertAddon(ctx, sku, ledger.AddonInput{
		PaymentID: in.PaymentID,
		UserID:    in.UserID,
		OrderID:   in.OrderID,
		SKU:       sku.ID,
		Quantity:  in.Quantity,
		Amount:    price.Amount,
		Currency:  price.Currency,
		Validity:  sku.Validity(),
		Now:       r.now(),
	})
	r.observe(eventSaveAddon, out, err)
	return out, err
}

func (r *Reconciler) insertAddon(ctx context.Context, sku catalog.AddonSKU, in ledger.AddonInput) (Outcome, error) {
	purchase, err := ledger.NewAddonPurchase(in)
	if err != nil {
		return OutcomeIgnored, err
	}

	out := OutcomeApplied
	switch err := r.store.InsertAddon(ctx, purchase); {
	case err == nil:
	case errors.Is(err, ledger.ErrDuplicate):
		out = OutcomeDuplicate
	default:
		return "", err
	}

	r.effects.Mail(ctx, effects.Mail{
		UserID: purchase.UserID,
		Kind:   email.KindAddonSuccess,
		Data: email.Data{
			AddonType:  sku.ID,
			Quantity:   purchase.Quantity,
			Amount:     purchase.Amount,
			Currency:   purchase.Currency,
			ExpiryDate: &purchase.ExpiryDate,
			PaymentID:  purchase.PaymentID,
		},
		Claim: func(ctx context.Context) (bool, error) {
			return r.store.ClaimAddonMail(ctx, purchase.PaymentID)
		},
	})
	if out == OutcomeApplied {
		r.effects.Notify(ctx, effects.Note{
			UserID:    purchase.UserID,
			Kind:      notifications.KindAddonSuccess,
			Title:     "Add-on Purchased",
			Message:   fmt.Sprintf("%d x %s added to your plan.", purchase.Quantity, sku.UnitLabel),
			RelatedID: purchase.PaymentID,
		})
	}
	return out, nil
}
