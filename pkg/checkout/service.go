package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
)

// Autopay subscriptions bill for a year and let the gateway notify the
// customer about each charge.
const (
	autopayTotalCount     = 12
	autopayCustomerNotify = true
)

// Service is the checkout entry point.
type Service struct {
	catalog    *catalog.Catalog
	gateway    razorpay.Gateway
	store      ledger.Store
	reconciler *reconciler.Reconciler
	effects    *effects.Effects
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEffects sets the side-effect dispatcher used by autopay changes.
func WithEffects(e *effects.Effects) Option {
	return func(s *Service) { s.effects = e }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Service. Panics if a dependency is nil.
func New(cat *catalog.Catalog, gw razorpay.Gateway, store ledger.Store, rec *reconciler.Reconciler, opts ...Option) *Service {
	if cat == nil || gw == nil || store == nil || rec == nil {
		panic("checkout: catalog, gateway, store and reconciler are required")
	}
	s := &Service{
		catalog:    cat,
		gateway:    gw,
		store:      store,
		reconciler: rec,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.effects == nil {
		s.effects = effects.New(nil, effects.WithLogger(s.logger))
	}
	s.logger = s.logger.With(logger.Component("checkout"))
	return s
}

// CreateOrder opens a one-time order for planID at the catalog price.
func (s *Service) CreateOrder(ctx context.Context, userID, planID string) (razorpay.Order, error) {
	if userID == "" {
		return razorpay.Order{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	plan, err := s.catalog.RequirePurchasable(planID)
	if err != nil {
		return razorpay.Order{}, err
	}

	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   plan.Price.Amount,
		Currency: plan.Price.Currency,
		Receipt:  receipt(userID),
		Notes: razorpay.Notes{
			razorpay.NoteUserID:   userID,
			razorpay.NotePlanName: plan.ID,
		},
	})
	if err != nil {
		return razorpay.Order{}, errors.Join(ErrGateway, err)
	}

	s.logger.InfoContext(ctx, "order created",
		logger.UserID(userID), logger.PlanID(plan.ID), logger.OrderID(order.ID))
	return order, nil
}

// VerifyInput is the checkout callback for a plan order.
type VerifyInput struct {
	UserID    string
	PlanID    string
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyPayment checks the callback signature and records the payment as
// successful. A second verify of the same payment is OutcomeDuplicate.
func (s *Service) VerifyPayment(ctx context.Context, in VerifyInput) (reconciler.Outcome, ledger.PaymentRecord, error) {
	if !s.gateway.VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature) {
		s.logger.WarnContext(ctx, "payment signature rejected",
			logger.UserID(in.UserID), logger.OrderID(in.OrderID), logger.PaymentID(in.PaymentID))
		return reconciler.OutcomeIgnored, ledger.PaymentRecord{}, ErrInvalidPaymentSignature
	}
	return s.reconciler.SavePayment(ctx, reconciler.SaveInput{
		UserID:    in.UserID,
		PaymentID: in.PaymentID,
		OrderID:   in.OrderID,
		PlanID:    in.PlanID,
		Status:    string(ledger.StatusSuccess),
	})
}

// CheckOrder returns the latest payment attempt on orderID.
func (s *Service) CheckOrder(ctx context.Context, orderID string) (razorpay.Payment, error) {
	if orderID == "" {
		return razorpay.Payment{}, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	payments, err := s.gateway.FetchOrderPayments(ctx, orderID)
	if err != nil {
		return razorpay.Payment{}, errors.Join(ErrGateway, err)
	}
	if len(payments) == 0 {
		return razorpay.Payment{}, ErrNoPayments
	}
	return payments[len(payments)-1], nil
}

// CreateAddonOrder opens a one-time order for quantity units of skuID.
func (s *Service) CreateAddonOrder(ctx context.Context, userID, skuID string, quantity int) (razorpay.Order, error) {
	if userID == "" {
		return razorpay.Order{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	sku, err := s.catalog.LookupAddon(skuID)
	if err != nil {
		return razorpay.Order{}, err
	}
	if quantity <= 0 || (sku.MaxQuantity > 0 && quantity > sku.MaxQuantity) {
		return razorpay.Order{}, fmt.Errorf("%w: quantity %d out of range", ErrInvalidInput, quantity)
	}

	price := sku.Price(quantity)
	order, err := s.gateway.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   price.Amount,
		Currency: price.Currency,
		Receipt:  receipt(userID),
		Notes: razorpay.Notes{
			razorpay.NoteUserID:    userID,
			razorpay.NoteAddonType: sku.ID,
			razorpay.NoteQuantity:  strconv.Itoa(quantity),
		},
	})
	if err != nil {
		return razorpay.Order{}, errors.Join(ErrGateway, err)
	}

	s.logger.InfoContext(ctx, "add-on order created",
		logger.UserID(userID), logger.AddonID(sku.ID), logger.OrderID(order.ID),
		slog.Int("quantity", quantity))
	return order, nil
}

// AddonVerifyInput is the checkout callback for an add-on order.
type AddonVerifyInput struct {
	UserID    string
	SKU       string
	Quantity  int
	OrderID   string
	PaymentID string
	Signature string
}

// VerifyAddon checks the callback signature and records the purchase.
func (s *Service) VerifyAddon(ctx context.Context, in AddonVerifyInput) (reconciler.Outcome, error) {
	if !s.gateway.VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature) {
		s.logger.WarnContext(ctx, "add-on payment signature rejected",
			logger.UserID(in.UserID), logger.OrderID(in.OrderID), logger.PaymentID(in.PaymentID))
		return reconciler.OutcomeIgnored, ErrInvalidPaymentSignature
	}
	return s.reconciler.SaveAddon(ctx, reconciler.AddonInput{
		UserID:    in.UserID,
		PaymentID: in.PaymentID,
		OrderID:   in.OrderID,
		SKU:       in.SKU,
		Quantity:  in.Quantity,
	})
}

// receipt is the gateway receipt for an order; the gateway caps its length,
// so only a user id prefix is kept.
func receipt(userID string) string {
	if len(userID) > 6 {
		userID = userID[:6]
	}
	return "rcpt_" + userID
}
