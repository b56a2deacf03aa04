package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

// Ledger is the read side of the ledger the evaluator needs.
type Ledger interface {
	ActivePayment(ctx context.Context, userID string, now time.Time) (ledger.PaymentRecord, error)
	AddonUnits(ctx context.Context, userID, sku string, now time.Time) (int, error)
}

// Evaluator computes plans, quotas and snapshots on read.
type Evaluator struct {
	catalog *catalog.Catalog
	ledger  Ledger
	counter Counter
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Evaluator. It panics on nil dependencies.
func New(cat *catalog.Catalog, l Ledger, counter Counter, opts ...Option) *Evaluator {
	if cat == nil || l == nil || counter == nil {
		panic("entitlement: catalog, ledger and counter are required")
	}
	e := &Evaluator{
		catalog: cat,
		ledger:  l,
		counter: counter,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(logger.Component("entitlement"))
	return e
}

// ActivePlan returns the plan the user holds now.
func (e *Evaluator) ActivePlan(ctx context.Context, userID string) (ActivePlan, error) {
	return e.activePlan(ctx, userID, e.now())
}

func (e *Evaluator) activePlan(ctx context.Context, userID string, now time.Time) (ActivePlan, error) {
	rec, err := e.ledger.ActivePayment(ctx, userID, now)
	if errors.Is(err, ledger.ErrNotFound) {
		return e.fallback(), nil
	}
	if err != nil {
		return ActivePlan{}, errors.Join(ErrFailedToResolve, err)
	}

	plan, err := e.catalog.Lookup(rec.PlanID)
	if err != nil {
		e.logger.WarnContext(ctx, "active record references unknown plan, using default",
			logger.UserID(userID),
			logger.PaymentID(rec.PaymentID),
			logger.PlanID(rec.PlanID),
		)
		return e.fallback(), nil
	}

	return ActivePlan{
		Plan:      plan,
		PaymentID: rec.PaymentID,
		ExpiresAt: rec.ExpiryDate,
		Autopay:   rec.Autopay,
	}, nil
}

func (e *Evaluator) fallback() ActivePlan {
	return ActivePlan{Plan: e.catalog.Default(), Default: true}
}

// AddonQuota returns the quota live add-ons grant for r at now.
func (e *Evaluator) AddonQuota(ctx context.Context, userID string, r catalog.Resource, now time.Time) (int, error) {
	total := 0
	for _, sku := range e.catalog.AddonsFor(r) {
		units, err := e.ledger.AddonUnits(ctx, userID, sku.ID, now)
		if err != nil {
			return 0, errors.Join(ErrFailedToResolve, err)
		}
		total += units * sku.QuotaPerUnit
	}
	return total, nil
}

// CheckQuota decides whether the user may create one more r. On deny the
// error wraps ErrLimitExceeded and reports used/limit.
func (e *Evaluator) CheckQuota(ctx context.Context, userID string, r catalog.Resource) (Decision, error) {
	if !r.Valid() {
		return Decision{}, fmt.Errorf("%w: %q", ErrInvalidResource, r)
	}

	now := e.now()
	ap, err := e.activePlan(ctx, userID, now)
	if err != nil {
		return Decision{}, err
	}
	u, err := e.usage(ctx, userID, ap.Plan, r, now)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Resource: r, Used: u.Used, Limit: u.Total, Allowed: u.Used < u.Total}
	if !d.Allowed {
		return d, fmt.Errorf("%w: %s limit reached (%s)", ErrLimitExceeded, r, d)
	}
	return d, nil
}

// Require is CheckQuota for callers that only need the error.
func (e *Evaluator) Require(ctx context.Context, userID string, r catalog.Resource) error {
	_, err := e.CheckQuota(ctx, userID, r)
	return err
}

// Snapshot returns the user's plan and per-resource usage.
func (e *Evaluator) Snapshot(ctx context.Context, userID string) (Snapshot, error) {
	now := e.now()
	ap, err := e.activePlan(ctx, userID, now)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		PlanID:    ap.Plan.ID,
		PlanName:  ap.Plan.Name,
		ExpiresAt: ap.ExpiresAt,
		Autopay:   ap.Autopay,
		Features:  ap.Plan.Features,
		Resources: make(map[catalog.Resource]Usage, len(catalog.Resources)),
		At:        now,
	}
	for _, r := range catalog.Resources {
		u, err := e.usage(ctx, userID, ap.Plan, r, now)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Resources[r] = u
	}
	return snap, nil
}

func (e *Evaluator) usage(ctx context.Context, userID string, plan catalog.PlanTier, r catalog.Resource, now time.Time) (Usage, error) {
	addon, err := e.AddonQuota(ctx, userID, r, now)
	if err != nil {
		return Usage{}, err
	}

	var window *Window
	period := plan.PeriodFor(r)
	if period == catalog.PeriodMonthly {
		w := MonthWindow(now)
		window = &w
	}

	used, err := e.counter.Count(ctx, userID, r, window)
	if err != nil {
		return Usage{}, errors.Join(ErrFailedToCountUsage, err)
	}

	u := Usage{
		Base:   int64(plan.Quota(r)),
		Addon:  int64(addon),
		Used:   used,
		Period: period,
	}
	u.Total = u.Base + u.Addon
	u.Remaining = max(u.Total-u.Used, 0)
	return u, nil
}
