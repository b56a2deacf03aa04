package billing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakthiswaran2705/NallaAngadi/handler"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/binder"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/checkout"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/entitlement"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/razorpay"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/reconciler"
)

// Ledger is the reconciler surface the module calls.
type Ledger interface {
	HandleWebhook(ctx context.Context, raw []byte, signature string) (reconciler.Outcome, error)
	SavePayment(ctx context.Context, in reconciler.SaveInput) (reconciler.Outcome, ledger.PaymentRecord, error)
}

// Checkout is the gateway-facing purchase flow.
type Checkout interface {
	CreateOrder(ctx context.Context, userID, planID string) (razorpay.Order, error)
	VerifyPayment(ctx context.Context, in checkout.VerifyInput) (reconciler.Outcome, ledger.PaymentRecord, error)
	CheckOrder(ctx context.Context, orderID string) (razorpay.Payment, error)
	CreateAddonOrder(ctx context.Context, userID, skuID string, quantity int) (razorpay.Order, error)
	VerifyAddon(ctx context.Context, in checkout.AddonVerifyInput) (reconciler.Outcome, error)
	CreateAutopay(ctx context.Context, userID, planID string) (razorpay.Subscription, error)
	ChangePlan(ctx context.Context, userID, planID string) (razorpay.Subscription, error)
	CancelAutopay(ctx context.Context, userID string) (ledger.PaymentRecord, error)
}

// Entitlements answers plan and quota reads.
type Entitlements interface {
	Snapshot(ctx context.Context, userID string) (entitlement.Snapshot, error)
	CheckQuota(ctx context.Context, userID string, r catalog.Resource) (entitlement.Decision, error)
}

// Notifications is the in-app inbox.
type Notifications interface {
	List(ctx context.Context, userID string, opts notifications.ListOptions) ([]notifications.Notification, error)
	MarkRead(ctx context.Context, userID string, notifIDs ...string) error
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// Module serves the billing HTTP surface.
type Module struct {
	ledger        Ledger
	checkout      Checkout
	entitlements  Entitlements
	notifications Notifications
	auth          func(http.Handler) http.Handler
	publicKey     string
	logger        *slog.Logger
	errorHandler  handler.ErrorHandler[handler.Context]
}

// Option configures the module.
type Option func(*Module)

// WithAuth sets the middleware guarding user routes, typically
// jwt.Middleware.
func WithAuth(mw func(http.Handler) http.Handler) Option {
	return func(m *Module) { m.auth = mw }
}

// WithNotifications mounts the inbox routes.
func WithNotifications(n Notifications) Option {
	return func(m *Module) { m.notifications = n }
}

// WithPublicKey sets the gateway key id returned with created orders.
func WithPublicKey(keyID string) Option {
	return func(m *Module) { m.publicKey = keyID }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates the module.
func New(l Ledger, c Checkout, e Entitlements, opts ...Option) *Module {
	m := &Module{
		ledger:       l,
		checkout:     c,
		entitlements: e,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(logger.Component("billing"))
	m.errorHandler = handler.NewErrorHandler(m.logger)
	return m
}

// Handle returns the module router.
func (m *Module) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/payment/webhook", m.webhook)

	r.Group(func(r chi.Router) {
		if m.auth != nil {
			r.Use(m.auth)
		}

		r.Route("/payment", func(r chi.Router) {
			r.Post("/create-order", route(m, m.createOrder, binder.JSON(), binder.Validate()))
			r.Post("/verify", route(m, m.verify, binder.JSON(), binder.Validate()))
			r.Post("/save", route(m, m.save, binder.JSON(), binder.Validate()))
			r.Post("/check-order", route(m, m.checkOrder, binder.JSON(), binder.Validate()))
			r.Post("/addon/create-order", route(m, m.createAddonOrder, binder.JSON(), binder.Validate()))
			r.Post("/addon/verify", route(m, m.verifyAddon, binder.JSON(), binder.Validate()))
			r.Get("/my-plan", route(m, m.myPlan))
			r.Get("/quota/{resource}", route(m, m.quota, binder.Path(chi.URLParam)))
		})

		r.Route("/autopay", func(r chi.Router) {
			r.Post("/create", route(m, m.createAutopay, binder.JSON(), binder.Validate()))
			r.Post("/change-plan", route(m, m.changePlan, binder.JSON(), binder.Validate()))
			r.Post("/cancel", route(m, m.cancelAutopay))
		})

		if m.notifications != nil {
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", route(m, m.listNotifications))
				r.Post("/read", route(m, m.markRead, binder.JSON(), binder.Validate()))
			})
		}
	})

	return r
}

func route[R any](m *Module, h handler.HandlerFunc[Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithContextFactory[Context, R](newContext),
		handler.WithBinders[Context, R](binders...),
		handler.WithErrorHandler[Context, R](func(ctx Context, err error) { m.errorHandler(ctx, err) }),
		handler.WithDecorators[Context, R](authenticated[R]),
	)
}

// fail logs err and renders it with its mapped status.
func (m *Module) fail(ctx Context, op string, err error) handler.Response {
	err = httpError(err)
	status, _ := handler.ClassifyError(err)

	level := slog.LevelError
	if status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	m.logger.Log(ctx, level, "billing request failed",
		slog.String("op", op),
		logger.UserID(ctx.UserID()),
		slog.Int("status", status),
		logger.Error(err),
	)
	return handler.JSONError(err)
}
