package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/effects"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/ledger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

var reminderKinds = map[ledger.Reminder]email.Kind{
	ledger.ReminderTwoDays: email.KindExpiryTwoDays,
	ledger.ReminderToday:   email.KindExpiryToday,
}

// ReminderWindow is the UTC day whose expiries get reminder m at now.
func ReminderWindow(m ledger.Reminder, now time.Time) (from, to time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	if m == ledger.ReminderTwoDays {
		day = day.AddDate(0, 0, 2)
	}
	return day, day.AddDate(0, 0, 1)
}

// Reminders queues every reminder milestone due at now.
func (s *Sweeper) Reminders(ctx context.Context, now time.Time) (Result, error) {
	var total Result
	for _, m := range ledger.Reminders {
		from, to := ReminderWindow(m, now)
		recs, err := s.store.ReminderCandidates(ctx, m, from, to, s.batchSize)
		if err != nil {
			return total, errors.Join(ErrFailedToList, err)
		}

		total.Scanned += len(recs)
		for _, rec := range recs {
			s.remind(ctx, rec, m)
			total.Queued++
		}
	}
	if total.Scanned > 0 {
		s.logger.InfoContext(ctx, "reminders queued", slog.String("result", total.String()))
	}
	return total, nil
}

func (s *Sweeper) remind(ctx context.Context, rec ledger.PaymentRecord, m ledger.Reminder) {
	planName := rec.PlanID
	if plan, err := s.catalog.Lookup(rec.PlanID); err == nil {
		planName = plan.Name
	}
	paymentID := rec.PaymentID
	s.effects.Mail(ctx, effects.Mail{
		UserID: rec.UserID,
		Kind:   reminderKinds[m],
		Data: email.Data{
			PlanName:   planName,
			ExpiryDate: rec.ExpiryDate,
			PaymentID:  paymentID,
		},
		Claim: func(ctx context.Context) (bool, error) {
			return s.store.ClaimReminder(ctx, paymentID, m)
		},
		RespectOptOut: true,
	})
	s.logger.DebugContext(ctx, "reminder queued",
		logger.UserID(rec.UserID), logger.PaymentID(paymentID), slog.String("milestone", string(m)))
}
