package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
)

// SaveInput is a client-reported payment status.
type SaveInput struct {
	UserID    string
	PaymentID string
	OrderID   string
	PlanID    string
	Status    string
	Message   string
}

func (r *Reconciler) applyPaymentCaptured(ctx context.Context, e razorpay.PaymentCaptured) (Outcome, error) {
	userID := e.Notes.Get(razorpay.NoteUserID)
	planID := e.Notes.Get(razorpay.NotePlanName)
	if userID == "" || planID == "" {
		return r.ignore(ctx, "payment without user or plan reference",
			logger.PaymentID(e.PaymentID), logger.OrderID(e.OrderID))
	}

	plan, err := r.catalog.Lookup(planID)
	if err != nil {
		return r.ignore(ctx, "payment for unknown plan",
			logger.PaymentID(e.PaymentID), logger.PlanID(planID), logger.Error(err))
	}

	now := r.now()
	return r.writePayment(ctx, plan, ledger.PaymentWrite{
		PaymentID:  e.PaymentID,
		UserID:     userID,
		OrderID:    e.OrderID,
		PlanID:     plan.ID,
		Amount:     e.Amount,
		Currency:   currencyOr(e.Currency, plan.Price.Currency),
		Status:     ledger.StatusSuccess,
		ExpiryDate: plan.ExpiryFrom(now),
		Now:        now,
	})
}

// SavePayment applies a status reported by the client after checkout. It
// follows the same transition rules as the webhook: a record already marked
// successful is never moved back.
func (r *Reconciler) SavePayment(ctx context.Context, in SaveInput) (Outcome, ledger.PaymentRecord, error) {
	status := ledger.Status(strings.ToLower(strings.TrimSpace(in.Status)))
	switch status {
	case ledger.StatusSuccess, ledger.StatusFailed, ledger.StatusPending:
	default:
		return OutcomeIgnored, ledger.PaymentRecord{}, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}
	if in.UserID == "" || in.PaymentID == "" || in.OrderID == "" {
		return OutcomeIgnored, ledger.PaymentRecord{}, fmt.Errorf("%w: user, payment and order ids are required", ErrInvalidInput)
	}

	plan, err := r.catalog.RequirePurchasable(in.PlanID)
	if err != nil {
		return OutcomeIgnored, ledger.PaymentRecord{}, err
	}

	now := r.now()
	w := ledger.PaymentWrite{
		PaymentID: in.PaymentID,
		UserID:    in.UserID,
		OrderID:   in.OrderID,
		PlanID:    plan.ID,
		Amount:    plan.Price.Amount,
		Currency:  plan.Price.Currency,
		Status:    status,
		Message:   in.Message,
		Now:       now,
	}
	if status == ledger.StatusSuccess {
		w.ExpiryDate = plan.ExpiryFrom(now)
	}

	out, err := r.writePayment(ctx, plan, w)
	r.observe(eventSavePayment, out, err)
	if err != nil {
		return out, ledger.PaymentRecord{}, err
	}
	rec, err := r.store.FindPayment(ctx, in.PaymentID)
	if err != nil {
		return out, ledger.PaymentRecord{}, err
	}
	return out, rec, nil
}

// writePayment upserts w and fires the confirmation side effects when the
// record is (or already was) successful.
func (r *Reconciler) writePayment(ctx context.Context, plan catalog.PlanTier, w ledger.PaymentWrite) (Outcome, error) {
	rec, err := r.store.UpsertPayment(ctx, w)
	var out Outcome
	switch {
	case err == nil:
		out = OutcomeApplied
	case errors.Is(err, ledger.ErrAlreadyApplied):
		out = OutcomeDuplicate
	case errors.Is(err, ledger.ErrTransitionRejected):
		r.logger.InfoContext(ctx, "payment write rejected by current state",
			logger.PaymentID(w.PaymentID),
			slog.String("current", string(rec.Status)),
			slog.String("attempted", string(w.Status)),
		)
		return OutcomeIgnored, nil
	default:
		return "", err
	}

	if rec.Status != ledger.StatusSuccess {
		return out, nil
	}

	// The claim makes the mail exactly-once across replays, while the
	// notification follows the transition itself.
	r.effects.Mail(ctx, effects.Mail{
		UserID: rec.UserID,
		Kind:   email.KindPaymentSuccess,
		Data: email.Data{
			PlanName:   plan.Name,
			Amount:     rec.Amount,
			Currency:   rec.Currency,
			ExpiryDate: rec.ExpiryDate,
			PaymentID:  rec.PaymentID,
		},
		Claim: func(ctx context.Context) (bool, error) {
			return r.store.ClaimPaymentMail(ctx, rec.PaymentID)
		},
	})
	if out == OutcomeApplied {
		r.effects.Notify(ctx, effects.Note{
			UserID:    rec.UserID,
			Kind:      notifications.KindPaymentSuccess,
			Title:     "Payment Successful",
			Message:   fmt.Sprintf("Your %s plan is active.", strings.ToUpper(plan.ID)),
			RelatedID: rec.PaymentID,
		})
	}
	return out, nil
}

func currencyOr(v, fallback string) string {
	if v != "" {
		return strings.ToUpper(v)
	}
	if fallback != "" {
		return fallback
	}
	return catalog.Currency
}
