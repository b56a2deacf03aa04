package checkout

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

// CreateAutopay starts a recurring subscription for planID. The ledger
// record stays pending until the gateway reports activation.
func (s *Service) CreateAutopay(ctx context.Context, userID, planID string) (razorpay.Subscription, error) {
	if userID == "" {
		return razorpay.Subscription{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	plan, err := s.catalog.RequireRecurring(planID)
	if err != nil {
		return razorpay.Subscription{}, err
	}

	switch _, err := s.store.FindActiveSubscription(ctx, userID); {
	case err == nil:
		return razorpay.Subscription{}, ErrAutopayActive
	case !errors.Is(err, ledger.ErrNotFound):
		return razorpay.Subscription{}, err
	}
	return s.subscribe(ctx, userID, plan)
}

// ChangePlan replaces the user's active subscription with one for planID.
// Cancelling the old subscription at the gateway is best effort; the ledger
// record is cancelled regardless so it stops renewing locally.
func (s *Service) ChangePlan(ctx context.Context, userID, planID string) (razorpay.Subscription, error) {
	if userID == "" {
		return razorpay.Subscription{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	plan, err := s.catalog.RequireRecurring(planID)
	if err != nil {
		return razorpay.Subscription{}, err
	}

	current, err := s.store.FindActiveSubscription(ctx, userID)
	switch {
	case errors.Is(err, ledger.ErrNotFound):
	case err != nil:
		return razorpay.Subscription{}, err
	case current.PlanID == plan.ID:
		return razorpay.Subscription{}, ErrSamePlan
	default:
		if err := s.gateway.CancelSubscription(ctx, current.SubscriptionID); err != nil {
			s.logger.WarnContext(ctx, "gateway cancel failed during plan change",
				logger.UserID(userID), logger.SubscriptionID(current.SubscriptionID), logger.Error(err))
		}
		if _, err := s.store.CancelSubscription(ctx, current.SubscriptionID, s.now()); err != nil &&
			!errors.Is(err, ledger.ErrAlreadyApplied) {
			return razorpay.Subscription{}, err
		}
	}

	sub, err := s.subscribe(ctx, userID, plan)
	if err != nil {
		return razorpay.Subscription{}, err
	}

	from := "no plan"
	if current.PlanID != "" {
		from = strings.ToUpper(current.PlanID)
	}
	s.effects.Notify(ctx, effects.Note{
		UserID:    userID,
		Kind:      notifications.KindPlanChanged,
		Title:     "Plan Changed",
		Message:   fmt.Sprintf("Your plan is changing from %s to %s.", from, strings.ToUpper(plan.ID)),
		RelatedID: sub.ID,
	})
	return sub, nil
}

// CancelAutopay stops the user's active subscription at the gateway and in
// the ledger. The current period stays usable until its expiry.
func (s *Service) CancelAutopay(ctx context.Context, userID string) (ledger.PaymentRecord, error) {
	current, err := s.store.FindActiveSubscription(ctx, userID)
	if errors.Is(err, ledger.ErrNotFound) {
		return ledger.PaymentRecord{}, ErrNoActiveAutopay
	}
	if err != nil {
		return ledger.PaymentRecord{}, err
	}

	if err := s.gateway.CancelSubscription(ctx, current.SubscriptionID); err != nil {
		return ledger.PaymentRecord{}, errors.Join(ErrGateway, err)
	}

	rec, err := s.store.CancelSubscription(ctx, current.SubscriptionID, s.now())
	if errors.Is(err, ledger.ErrAlreadyApplied) {
		return rec, nil
	}
	if err != nil {
		return ledger.PaymentRecord{}, err
	}

	planName := rec.PlanID
	if plan, err := s.catalog.Lookup(rec.PlanID); err == nil {
		planName = plan.Name
	}
	s.effects.Mail(ctx, effects.Mail{
		UserID: rec.UserID,
		Kind:   email.KindSubscriptionCancelled,
		Data: email.Data{
			PlanName:   planName,
			Amount:     rec.Amount,
			Currency:   rec.Currency,
			ExpiryDate: rec.ExpiryDate,
			PaymentID:  rec.PaymentID,
		},
	})
	s.effects.Notify(ctx, effects.Note{
		UserID:    rec.UserID,
		Kind:      notifications.KindSubscriptionCancelled,
		Title:     "Autopay Cancelled",
		Message:   fmt.Sprintf("Your %s plan will not renew automatically.", strings.ToUpper(rec.PlanID)),
		RelatedID: rec.SubscriptionID,
	})
	s.logger.InfoContext(ctx, "autopay cancelled",
		logger.UserID(userID), logger.SubscriptionID(rec.SubscriptionID))
	return rec, nil
}

func (s *Service) subscribe(ctx context.Context, userID string, plan catalog.PlanTier) (razorpay.Subscription, error) {
	sub, err := s.gateway.CreateSubscription(ctx, razorpay.SubscriptionRequest{
		PlanID:         plan.Recurring.ExternalPlanID,
		TotalCount:     autopayTotalCount,
		CustomerNotify: autopayCustomerNotify,
		Notes: razorpay.Notes{
			razorpay.NoteUserID: userID,
			razorpay.NotePlan:   plan.ID,
		},
	})
	if err != nil {
		return razorpay.Subscription{}, errors.Join(ErrGateway, err)
	}

	now := s.now()
	err = s.store.CreateSubscription(ctx, ledger.PaymentRecord{
		PaymentID:          sub.ID,
		UserID:             userID,
		PlanID:             plan.ID,
		Amount:             plan.Price.Amount,
		Currency:           plan.Price.Currency,
		Status:             ledger.StatusPending,
		SubscriptionID:     sub.ID,
		SubscriptionStatus: ledger.SubscriptionCreated,
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		return razorpay.Subscription{}, err
	}

	s.logger.InfoContext(ctx, "autopay subscription created",
		logger.UserID(userID), logger.PlanID(plan.ID), logger.SubscriptionID(sub.ID))
	return sub, nil
}
