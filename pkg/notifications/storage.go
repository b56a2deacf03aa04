package notifications

import (
	"context"
	"errors"
)

var (
	ErrNotificationNotFound = errors.New("notifications.errors.not_found")
	ErrInvalidNotification  = errors.New("notifications.errors.invalid")
	ErrStorage              = errors.New("notifications.errors.storage_failure")
)

// Storage handles notification persistence and retrieval.
type Storage interface {
	Create(ctx context.Context, notif Notification) error
	Get(ctx context.Context, userID, notifID string) (*Notification, error)
	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)
	MarkRead(ctx context.Context, userID string, notifIDs ...string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions filters and pages List.
type ListOptions struct {
	Limit      int // 0 means no limit
	Offset     int
	OnlyUnread bool
	Kinds      []Kind
}

func validate(n Notification) error {
	switch {
	case n.ID == "":
		return errors.Join(ErrInvalidNotification, errors.New("notification id is required"))
	case n.UserID == "":
		return errors.Join(ErrInvalidNotification, errors.New("user id is required"))
	}
	return nil
}
