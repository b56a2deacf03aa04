package reconciler

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/metrics"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
)

// Event labels for client-reported writes.
const (
	eventSavePayment = "client.save_payment"
	eventSaveAddon   = "client.save_addon"
)

// Reconciler is the ledger state machine.
type Reconciler struct {
	catalog       *catalog.Catalog
	store         ledger.Store
	effects       *effects.Effects
	webhookSecret string
	metrics       *metrics.LedgerMetrics
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithEffects sets the side-effect dispatcher. Without it no mail or
// notification is sent.
func WithEffects(e *effects.Effects) Option {
	return func(r *Reconciler) { r.effects = e }
}

func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Reconciler. An empty webhook secret is a configuration error:
// without it no webhook could be authenticated.
func New(cat *catalog.Catalog, store ledger.Store, webhookSecret string, opts ...Option) (*Reconciler, error) {
	if webhookSecret == "" {
		return nil, razorpay.ErrMissingWebhookSecret
	}
	if cat == nil || store == nil {
		panic("reconciler: catalog and store are required")
	}
	r := &Reconciler{
		catalog:       cat,
		store:         store,
		webhookSecret: webhookSecret,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.effects == nil {
		r.effects = effects.New(nil, effects.WithLogger(r.logger))
	}
	r.logger = r.logger.With(logger.Component("reconciler"))
	return r, nil
}

// HandleWebhook authenticates raw against signature, parses it and applies
// the event. Only a signature failure and a ledger store failure return an
// error; everything else is acknowledged with an Outcome.
func (r *Reconciler) HandleWebhook(ctx context.Context, raw []byte, signature string) (Outcome, error) {
	if !razorpay.VerifyWebhookSignature(raw, signature, r.webhookSecret) {
		r.metrics.ObserveEvent("webhook", "invalid_signature")
		r.logger.WarnContext(ctx, "webhook signature rejected", slog.Int("body_bytes", len(raw)))
		return OutcomeIgnored, ErrInvalidSignature
	}

	ev, err := razorpay.ParseEvent(raw)
	if err != nil {
		r.metrics.ObserveEvent("webhook", string(OutcomeIgnored))
		r.logger.WarnContext(ctx, "malformed webhook acknowledged", logger.Error(err))
		return OutcomeIgnored, nil
	}
	return r.Apply(ctx, ev)
}

// Apply runs the transition for an already authenticated event.
func (r *Reconciler) Apply(ctx context.Context, ev razorpay.Event) (Outcome, error) {
	var (
		out Outcome
		err error
	)
	switch e := ev.(type) {
	case razorpay.PaymentCaptured:
		switch {
		case e.InvoiceID != "":
			// Recurring charges are booked by invoice.paid.
			r.logger.DebugContext(ctx, "subscription charge acknowledged",
				logger.PaymentID(e.PaymentID), logger.InvoiceID(e.InvoiceID))
			out = OutcomeIgnored
		case e.Notes.Get(razorpay.NoteAddonType) != "":
			out, err = r.applyAddonCaptured(ctx, e)
		default:
			out, err = r.applyPaymentCaptured(ctx, e)
		}
	case razorpay.SubscriptionActivated:
		out, err = r.applyActivated(ctx, e)
	case razorpay.InvoicePaid:
		out, err = r.applyInvoicePaid(ctx, e)
	case razorpay.SubscriptionCancelled:
		out, err = r.applyCancelled(ctx, e)
	default:
		r.logger.DebugContext(ctx, "unhandled event acknowledged", logger.EventType(ev.Name()))
		out = OutcomeIgnored
	}

	r.observe(ev.Name(), out, err)
	return out, err
}

func (r *Reconciler) observe(event string, out Outcome, err error) {
	if err != nil {
		r.metrics.ObserveEvent(event, "error")
		return
	}
	r.metrics.ObserveEvent(event, string(out))
}

func (r *Reconciler) ignore(ctx context.Context, reason string, attrs ...any) (Outcome, error) {
	r.logger.WarnContext(ctx, "event ignored: "+reason, attrs...)
	return OutcomeIgnored, nil
}

// Wait blocks until dispatched side effects finish.
func (r *Reconciler) Wait() {
	r.effects.Wait()
}
