package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sakthiswaran2705/NallaAngadi/pkg/logger"
)

// Manager orchestrates notification storage and delivery.
type Manager struct {
	storage   Storage
	deliverer Deliverer
	logger    *slog.Logger
	now       func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger for the Manager.
func WithManagerLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager creates a notification manager. A nil deliverer disables
// real-time delivery.
func NewManager(storage Storage, deliverer Deliverer, opts ...ManagerOption) *Manager {
	if deliverer == nil {
		deliverer = NoOpDeliverer{}
	}
	m := &Manager{
		storage:   storage,
		deliverer: deliverer,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send stores the notification and then attempts delivery. A delivery
// failure is logged and does not fail the call.
func (m *Manager) Send(ctx context.Context, notif Notification) error {
	if notif.ID == "" {
		notif.ID = uuid.NewString()
	}
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = m.now()
	}

	if err := m.storage.Create(ctx, notif); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if err := m.deliverer.Deliver(ctx, notif); err != nil {
		m.logger.LogAttrs(ctx, slog.LevelWarn, "notification stored but not delivered",
			slog.String("notification_id", notif.ID),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
	}
	return nil
}

// Notify is Send for the common title/message shape.
func (m *Manager) Notify(ctx context.Context, userID string, kind Kind, title, message, relatedID string) error {
	return m.Send(ctx, Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
	})
}

func (m *Manager) List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error) {
	return m.storage.List(ctx, userID, opts)
}

func (m *Manager) MarkRead(ctx context.Context, userID string, notifIDs ...string) error {
	return m.storage.MarkRead(ctx, userID, notifIDs...)
}

// MarkAllRead marks every unread notification of the user as read.
func (m *Manager) MarkAllRead(ctx context.Context, userID string) error {
	unread, err := m.storage.List(ctx, userID, ListOptions{OnlyUnread: true})
	if err != nil {
		return err
	}
	if len(unread) == 0 {
		return nil
	}
	ids := make([]string, len(unread))
	for i, n := range unread {
		ids[i] = n.ID
	}
	return m.storage.MarkRead(ctx, userID, ids...)
}

func (m *Manager) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.storage.CountUnread(ctx, userID)
}
