package billing

import (
	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
)

func subscriptionResult(s razorpay.Subscription) subscriptionResponse {
	return subscriptionResponse{SubscriptionID: s.ID, PlanID: s.PlanID, Status: s.Status, ShortURL: s.ShortURL}
}

func (m *Module) createAutopay(ctx Context, req planRequest) handler.Response {
	sub, err := m.checkout.CreateAutopay(ctx, ctx.UserID(), req.PlanID)
	if err != nil {
		return m.fail(ctx, "create_autopay", err)
	}
	return handler.JSON(subscriptionResult(sub))
}

func (m *Module) changePlan(ctx Context, req planRequest) handler.Response {
	sub, err := m.checkout.ChangePlan(ctx, ctx.UserID(), req.PlanID)
	if err != nil {
		return m.fail(ctx, "change_plan", err)
	}
	return handler.JSON(subscriptionResult(sub))
}

func (m *Module) cancelAutopay(ctx Context, _ noRequest) handler.Response {
	rec, err := m.checkout.CancelAutopay(ctx, ctx.UserID())
	if err != nil {
		return m.fail(ctx, "cancel_autopay", err)
	}
	return handler.JSON(map[string]string{
		"subscription_id":     rec.SubscriptionID,
		"subscription_status": string(rec.SubscriptionStatus),
	})
}
