package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/catalog"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/metrics"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
)

// DefaultBatchSize caps how many records one pass handles.
const DefaultBatchSize = 500

// Result summarises one pass. Queued counts reminder mails handed to the
// dispatcher; whether each one is sent is decided later by its claim.
type Result struct {
	Scanned int
	Applied int
	Queued  int
	Skipped int
	Failed  int
}

func (r Result) String() string {
	return fmt.Sprintf("scanned=%d applied=%d queued=%d skipped=%d failed=%d",
		r.Scanned, r.Applied, r.Queued, r.Skipped, r.Failed)
}

// Sweeper expires lapsed records and sends reminders.
type Sweeper struct {
	store     ledger.Store
	catalog   *catalog.Catalog
	locker    ResourceLocker
	effects   *effects.Effects
	metrics   *metrics.LedgerMetrics
	logger    *slog.Logger
	batchSize int
}

// Option configures a Sweeper.
type Option func(*Sweeper)

func WithEffects(e *effects.Effects) Option {
	return func(s *Sweeper) { s.effects = e }
}

func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(s *Sweeper) { s.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBatchSize caps records per pass. Non-positive values are ignored.
func WithBatchSize(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New builds a Sweeper. Panics if a dependency is nil.
func New(store ledger.Store, cat *catalog.Catalog, locker ResourceLocker, opts ...Option) *Sweeper {
	if store == nil || cat == nil || locker == nil {
		panic("sweeper: store, catalog and locker are required")
	}
	s := &Sweeper{
		store:     store,
		catalog:   cat,
		locker:    locker,
		logger:    slog.Default(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.effects == nil {
		s.effects = effects.New(nil, effects.WithLogger(s.logger))
	}
	s.logger = s.logger.With(logger.Component("sweeper"))
	return s
}

// Sweep expires every due record at now. A record whose resources could not
// be locked is left untouched for the next pass.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	recs, err := s.store.ExpiryCandidates(ctx, now, s.batchSize)
	if err != nil {
		return Result{}, errors.Join(ErrFailedToList, err)
	}

	res := Result{Scanned: len(recs)}
	for _, rec := range recs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		expired, err := s.expire(ctx, rec, now)
		switch {
		case err != nil:
			res.Failed++
			s.logger.ErrorContext(ctx, "failed to expire record",
				logger.PaymentID(rec.PaymentID), logger.UserID(rec.UserID), logger.Error(err))
		case expired:
			res.Applied++
		default:
			res.Skipped++
		}
	}

	s.metrics.AddExpired(res.Applied)
	if res.Scanned > 0 {
		s.logger.InfoContext(ctx, "expiry sweep finished", slog.String("result", res.String()))
	}
	return res, nil
}

func (s *Sweeper) expire(ctx context.Context, rec ledger.PaymentRecord, now time.Time) (bool, error) {
	// Another live plan keeps the user's resources open.
	other, err := s.store.ActivePayment(ctx, rec.UserID, now)
	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "user still entitled, resources left open",
			logger.UserID(rec.UserID), logger.PaymentID(rec.PaymentID),
			slog.String("active_payment_id", other.PaymentID))
	case errors.Is(err, ledger.ErrNotFound):
		if err := s.locker.LockResources(ctx, rec.UserID); err != nil {
			return false, err
		}
	default:
		return false, err
	}

	ok, err := s.store.MarkExpired(ctx, rec.PaymentID, now)
	if err != nil || !ok {
		return false, err
	}

	planName := rec.PlanID
	if plan, err := s.catalog.Lookup(rec.PlanID); err == nil {
		planName = plan.Name
	}
	s.effects.Mail(ctx, effects.Mail{
		UserID: rec.UserID,
		Kind:   email.KindPlanExpired,
		Data: email.Data{
			PlanName:   planName,
			ExpiryDate: rec.ExpiryDate,
			PaymentID:  rec.PaymentID,
		},
		RespectOptOut: true,
	})
	s.effects.Notify(ctx, effects.Note{
		UserID:    rec.UserID,
		Kind:      notifications.KindPlanExpired,
		Title:     "Plan Expired",
		Message:   fmt.Sprintf("Your %s plan has expired. Renew to reopen your shops and offers.", strings.ToUpper(rec.PlanID)),
		RelatedID: rec.PaymentID,
	})
	s.logger.InfoContext(ctx, "plan expired", logger.UserID(rec.UserID), logger.PaymentID(rec.PaymentID))
	return true, nil
}

// Wait blocks until dispatched side effects finish.
func (s *Sweeper) Wait() {
	s.effects.Wait()
}
