// Package effects dispatches the mail and in-app notification side effects
// of ledger transitions.
//
// Each side effect is one async task. A mail task first runs its claim (a
// conditional flag flip in the ledger) and sends only if the claim reports
// this caller won it, which makes confirmation mails at-most-once per record
// even under concurrent duplicate deliveries. A failed send is not retried.
package effects

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/async"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/email"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/metrics"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/notifications"
	"github.com/sakthiswaran2705/NallaAngadi/pkg/users"
)

// Mailer sends a templated ledger mail.
type Mailer interface {
	Send(ctx context.Context, kind email.Kind, to string, data email.Data) error
}

// Notifier stores an in-app notification.
type Notifier interface {
	Notify(ctx context.Context, userID string, kind notifications.Kind, title, message, relatedID string) error
}

// Claim flips a sent-flag and reports whether this caller flipped it.
type Claim func(ctx context.Context) (bool, error)

// Mail describes one mail side effect.
type Mail struct {
	UserID string
	Kind   email.Kind
	Data   email.Data
	// Claim gates the send; nil sends unconditionally.
	Claim Claim
	// RespectOptOut skips users who turned email notifications off.
	RespectOptOut bool
}

// Note describes one in-app notification.
type Note struct {
	UserID    string
	Kind      notifications.Kind
	Title     string
	Message   string
	RelatedID string
}

// Effects runs side effects on a dispatcher. Missing collaborators turn the
// matching side effect into a no-op.
type Effects struct {
	dispatcher *async.Dispatcher
	directory  users.Directory
	mailer     Mailer
	notifier   Notifier
	metrics    *metrics.LedgerMetrics
	logger     *slog.Logger
}

// Option configures Effects.
type Option func(*Effects)

func WithDirectory(d users.Directory) Option { return func(e *Effects) { e.directory = d } }
func WithMailer(m Mailer) Option             { return func(e *Effects) { e.mailer = m } }
func WithNotifier(n Notifier) Option         { return func(e *Effects) { e.notifier = n } }
func WithMetrics(m *metrics.LedgerMetrics) Option {
	return func(e *Effects) { e.metrics = m }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Effects) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds Effects on d; a nil d gets a default dispatcher.
func New(d *async.Dispatcher, opts ...Option) *Effects {
	e := &Effects{dispatcher: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	if e.dispatcher == nil {
		e.dispatcher = async.NewDispatcher(async.WithLogger(e.logger))
	}
	e.logger = e.logger.With(logger.Component("effects"))
	return e
}

// Mail dispatches m.
func (e *Effects) Mail(ctx context.Context, m Mail) {
	if e.mailer == nil || e.directory == nil {
		return
	}
	e.dispatch(ctx, "mail_"+string(m.Kind), func(ctx context.Context) error {
		return e.sendMail(ctx, m)
	})
}

func (e *Effects) sendMail(ctx context.Context, m Mail) error {
	if m.Claim != nil {
		won, err := m.Claim(ctx)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
	}

	c, err := e.directory.Contact(ctx, m.UserID)
	if errors.Is(err, users.ErrUserNotFound) {
		e.logger.WarnContext(ctx, "mail skipped, user not found",
			logger.UserID(m.UserID), slog.String("kind", string(m.Kind)))
		return nil
	}
	if err != nil {
		return err
	}
	if c.Email == "" || (m.RespectOptOut && !c.EmailEnabled) {
		e.logger.DebugContext(ctx, "mail skipped",
			logger.UserID(m.UserID), slog.String("kind", string(m.Kind)),
			slog.Bool("opted_out", !c.EmailEnabled))
		return nil
	}
	return e.mailer.Send(ctx, m.Kind, c.Email, m.Data)
}

// Notify dispatches n.
func (e *Effects) Notify(ctx context.Context, n Note) {
	if e.notifier == nil {
		return
	}
	e.dispatch(ctx, "notify_"+string(n.Kind), func(ctx context.Context) error {
		return e.notifier.Notify(ctx, n.UserID, n.Kind, n.Title, n.Message, n.RelatedID)
	})
}

func (e *Effects) dispatch(ctx context.Context, name string, task async.Task) {
	err := e.dispatcher.Go(ctx, name, func(ctx context.Context) error {
		err := task(ctx)
		e.metrics.ObserveEffect(name, err)
		return err
	})
	if err != nil {
		e.logger.WarnContext(ctx, "side effect dropped", logger.Job(name), logger.Error(err))
	}
}

// Wait blocks until dispatched side effects finish.
func (e *Effects) Wait() {
	e.dispatcher.Wait()
}
