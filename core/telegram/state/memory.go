package state

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[S any] struct {
	session S
	expires time.Time
}

// MemoryStore keeps sessions in process memory with an inactivity TTL.
type MemoryStore[S Session[S]] struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]memoryEntry[S]
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now func() time.Time
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// NewMemoryStore constructs an in-memory store. ttl <= 0 keeps sessions until cleared.
func NewMemoryStore[S Session[S]](ttl time.Duration, opts ...MemoryOption) *MemoryStore[S] {
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryStore[S]{
		ttl:      ttl,
		now:      o.now,
		sessions: make(map[int64]memoryEntry[S]),
	}
}

// Load returns a copy of the stored session.
func (m *MemoryStore[S]) Load(_ context.Context, userID int64) (S, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero S
	e, ok := m.sessions[userID]
	if !ok {
		return zero, ErrNotFound
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.sessions, userID)
		return zero, ErrNotFound
	}
	return e.session.Clone(), nil
}

// Save stores a copy of s and refreshes its TTL.
func (m *MemoryStore[S]) Save(_ context.Context, userID int64, s S) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sessions[userID] = memoryEntry[S]{session: s.Clone(), expires: now.Add(m.ttl)}
	m.gcLocked(now)
	return nil
}

// Clear removes the user's session.
func (m *MemoryStore[S]) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (m *MemoryStore[S]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore[S]) gcLocked(now time.Time) {
	if m.ttl <= 0 || len(m.sessions) < 1024 {
		return
	}
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
		}
	}
}
