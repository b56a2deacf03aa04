package billing

import (
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/checkout"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
)

func (m *Module) orderResponse(o razorpay.Order) orderResponse {
	return orderResponse{OrderID: o.ID, Amount: o.Amount, Currency: o.Currency, KeyID: m.publicKey}
}

func paymentResult(out reconciler.Outcome, rec ledger.PaymentRecord) paymentResponse {
	resp := paymentResponse{Outcome: string(out), Plan: rec.PlanID, Status: string(rec.Status)}
	if rec.ExpiryDate != nil {
		resp.Expiry = rec.ExpiryDate.UTC().Format(time.RFC3339)
	}
	return resp
}

func (m *Module) createOrder(ctx Context, req planRequest) handler.Response {
	order, err := m.checkout.CreateOrder(ctx, ctx.UserID(), req.PlanID)
	if err != nil {
		return m.fail(ctx, "create_order", err)
	}
	return handler.JSON(m.orderResponse(order))
}

func (m *Module) verify(ctx Context, req verifyRequest) handler.Response {
	out, rec, err := m.checkout.VerifyPayment(ctx, checkout.VerifyInput{
		UserID:    ctx.UserID(),
		PlanID:    req.PlanID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return m.fail(ctx, "verify_payment", err)
	}
	return handler.JSON(paymentResult(out, rec))
}

// save records a client-reported status. It never overrides a settled
// payment; see reconciler.SavePayment.
func (m *Module) save(ctx Context, req saveRequest) handler.Response {
	out, rec, err := m.ledger.SavePayment(ctx, reconciler.SaveInput{
		UserID:    ctx.UserID(),
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		PlanID:    req.PlanID,
		Status:    req.Status,
		Message:   req.Message,
	})
	if err != nil {
		return m.fail(ctx, "save_payment", err)
	}
	return handler.JSON(paymentResult(out, rec))
}

func (m *Module) checkOrder(ctx Context, req checkOrderRequest) handler.Response {
	p, err := m.checkout.CheckOrder(ctx, req.OrderID)
	if err != nil {
		return m.fail(ctx, "check_order", err)
	}
	return handler.JSON(map[string]any{
		"payment_id":     p.ID,
		"payment_status": p.Status,
		"amount":         p.Amount,
		"currency":       p.Currency,
	})
}

func (m *Module) createAddonOrder(ctx Context, req addonOrderRequest) handler.Response {
	order, err := m.checkout.CreateAddonOrder(ctx, ctx.UserID(), req.AddonType, req.Quantity)
	if err != nil {
		return m.fail(ctx, "create_addon_order", err)
	}
	return handler.JSON(m.orderResponse(order))
}

func (m *Module) verifyAddon(ctx Context, req addonVerifyRequest) handler.Response {
	out, err := m.checkout.VerifyAddon(ctx, checkout.AddonVerifyInput{
		UserID:    ctx.UserID(),
		SKU:       req.AddonType,
		Quantity:  req.Quantity,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return m.fail(ctx, "verify_addon", err)
	}
	return handler.JSON(map[string]string{"outcome": string(out)})
}
