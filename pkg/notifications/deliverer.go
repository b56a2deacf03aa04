package notifications

import (
	"context"
	"log/slog"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

// Deliverer pushes a stored notification to the user in real time.
type Deliverer interface {
	Deliver(ctx context.Context, notif Notification) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, notif Notification) error

func (f DelivererFunc) Deliver(ctx context.Context, notif Notification) error { return f(ctx, notif) }

// NoOpDeliverer is used when there is no real-time channel.
type NoOpDeliverer struct{}

func (NoOpDeliverer) Deliver(context.Context, Notification) error { return nil }

// LogDeliverer logs each notification at debug level.
type LogDeliverer struct {
	Logger *slog.Logger
}

func (d LogDeliverer) Deliver(ctx context.Context, notif Notification) error {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	l.DebugContext(ctx, "notification delivered",
		slog.String("notification_id", notif.ID),
		slog.String("kind", string(notif.Kind)),
		logger.UserID(notif.UserID),
	)
	return nil
}
