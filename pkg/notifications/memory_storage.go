package notifications

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage for development and tests.
type MemoryStorage struct {
	mu            sync.RWMutex
	notifications map[string][]Notification // user id -> notifications
	now           func() time.Time
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notifications: make(map[string][]Notification),
		now:           time.Now,
	}
}

func (s *MemoryStorage) Create(_ context.Context, notif Notification) error {
	if err := validate(notif); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = s.now()
	}
	s.notifications[notif.UserID] = append(s.notifications[notif.UserID], notif)
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, userID, notifID string) (*Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications[userID] {
		if n.ID == notifID {
			return &n, nil
		}
	}
	return nil, ErrNotificationNotFound
}

func (s *MemoryStorage) List(_ context.Context, userID string, opts ListOptions) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Notification{}
	for _, n := range s.notifications[userID] {
		if opts.OnlyUnread && n.Read {
			continue
		}
		if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, n.Kind) {
			continue
		}
		out = append(out, n)
	}
	slices.SortStableFunc(out, func(a, b Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if opts.Offset >= len(out) {
		return []Notification{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStorage) MarkRead(_ context.Context, userID string, notifIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	list := s.notifications[userID]
	for i := range list {
		if !list[i].Read && slices.Contains(notifIDs, list[i].ID) {
			list[i].MarkAsRead(now)
		}
	}
	return nil
}

func (s *MemoryStorage) CountUnread(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}
