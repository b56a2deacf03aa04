package users

import (
	"context"
	"sync"
)

// MemoryDirectory is an in-memory Directory for tests and development.
type MemoryDirectory struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

var _ Directory = (*MemoryDirectory)(nil)

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{contacts: make(map[string]Contact)}
}

// Put adds or replaces a contact.
func (d *MemoryDirectory) Put(userID string, c Contact) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.contacts[userID] = c
}

func (d *MemoryDirectory) Contact(_ context.Context, userID string) (Contact, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.contacts[userID]
	if !ok {
		return Contact{}, ErrUserNotFound
	}
	return c, nil
}
