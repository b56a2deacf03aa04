package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
)

// subscriptionPlan loads the ledger record and its plan for a subscription
// event. ok is false when the event should be ignored.
func (r *Reconciler) subscriptionPlan(ctx context.Context, subscriptionID string) (ledger.PaymentRecord, catalog.PlanTier, bool, error) {
	rec, err := r.store.FindSubscription(ctx, subscriptionID)
	if errors.Is(err, ledger.ErrNotFound) {
		r.ignore(ctx, "unknown subscription", logger.SubscriptionID(subscriptionID))
		return ledger.PaymentRecord{}, catalog.PlanTier{}, false, nil
	}
	if err != nil {
		return ledger.PaymentRecord{}, catalog.PlanTier{}, false, err
	}
	plan, err := r.catalog.Lookup(rec.PlanID)
	if err != nil {
		r.ignore(ctx, "subscription for unknown plan",
			logger.SubscriptionID(subscriptionID), logger.PlanID(rec.PlanID))
		return ledger.PaymentRecord{}, catalog.PlanTier{}, false, nil
	}
	return rec, plan, true, nil
}

func (r *Reconciler) applyActivated(ctx context.Context, e razorpay.SubscriptionActivated) (Outcome, error) {
	_, plan, ok, err := r.subscriptionPlan(ctx, e.SubscriptionID)
	if !ok {
		return OutcomeIgnored, err
	}

	now := r.now()
	rec, err := r.store.ActivateSubscription(ctx, e.SubscriptionID, plan.ExpiryFrom(now), now)
	if out, done, err := transitionOutcome(err); done {
		return out, err
	}

	r.subscriptionEffects(ctx, rec, plan, email.KindSubscriptionActive, notifications.KindSubscriptionActive,
		"Autopay Activated", fmt.Sprintf("Your %s plan will renew automatically.", strings.ToUpper(plan.ID)))
	return OutcomeApplied, nil
}

func (r *Reconciler) applyInvoicePaid(ctx context.Context, e razorpay.InvoicePaid) (Outcome, error) {
	invoiceID := e.InvoiceID
	if invoiceID == "" {
		invoiceID = e.PaymentID
	}
	if invoiceID == "" {
		return r.ignore(ctx, "invoice without invoice or payment id", logger.SubscriptionID(e.SubscriptionID))
	}

	_, plan, ok, err := r.subscriptionPlan(ctx, e.SubscriptionID)
	if !ok {
		return OutcomeIgnored, err
	}
	if plan.Duration() <= 0 {
		return r.ignore(ctx, "renewal for perpetual plan", logger.SubscriptionID(e.SubscriptionID), logger.PlanID(plan.ID))
	}

	rec, err := r.store.RenewSubscription(ctx, e.SubscriptionID, invoiceID, plan.Duration(), r.now())
	if out, done, err := transitionOutcome(err); done {
		return out, err
	}

	r.logger.InfoContext(ctx, "subscription renewed",
		logger.SubscriptionID(e.SubscriptionID),
		logger.InvoiceID(invoiceID),
		logger.UserID(rec.UserID),
	)
	r.subscriptionEffects(ctx, rec, plan, email.KindSubscriptionRenewed, notifications.KindSubscriptionRenewed,
		"Subscription Renewed", fmt.Sprintf("Your %s plan was renewed.", strings.ToUpper(plan.ID)))
	return OutcomeApplied, nil
}

func (r *Reconciler) applyCancelled(ctx context.Context, e razorpay.SubscriptionCancelled) (Outcome, error) {
	_, plan, ok, err := r.subscriptionPlan(ctx, e.SubscriptionID)
	if !ok {
		return OutcomeIgnored, err
	}

	rec, err := r.store.CancelSubscription(ctx, e.SubscriptionID, r.now())
	if out, done, err := transitionOutcome(err); done {
		return out, err
	}

	r.subscriptionEffects(ctx, rec, plan, email.KindSubscriptionCancelled, notifications.KindSubscriptionCancelled,
		"Autopay Cancelled", fmt.Sprintf("Your %s plan will not renew automatically.", strings.ToUpper(plan.ID)))
	return OutcomeApplied, nil
}

// subscriptionEffects runs once per matched transition; the conditional
// write is the gate, so no extra claim is needed.
func (r *Reconciler) subscriptionEffects(ctx context.Context, rec ledger.PaymentRecord, plan catalog.PlanTier,
	mail email.Kind, note notifications.Kind, title, message string,
) {
	r.effects.Mail(ctx, effects.Mail{
		UserID: rec.UserID,
		Kind:   mail,
		Data: email.Data{
			PlanName:   plan.Name,
			Amount:     rec.Amount,
			Currency:   rec.Currency,
			ExpiryDate: rec.ExpiryDate,
			PaymentID:  rec.PaymentID,
		},
	})
	r.effects.Notify(ctx, effects.Note{
		UserID:    rec.UserID,
		Kind:      note,
		Title:     title,
		Message:   message,
		RelatedID: rec.SubscriptionID,
	})
}

// transitionOutcome maps a conditional-write error to an outcome. done is
// true when the caller must stop without side effects.
func transitionOutcome(err error) (Outcome, bool, error) {
	switch {
	case err == nil:
		return OutcomeApplied, false, nil
	case errors.Is(err, ledger.ErrAlreadyApplied):
		return OutcomeDuplicate, true, nil
	case errors.Is(err, ledger.ErrTransitionRejected), errors.Is(err, ledger.ErrNotFound):
		return OutcomeIgnored, true, nil
	default:
		return "", true, err
	}
}
