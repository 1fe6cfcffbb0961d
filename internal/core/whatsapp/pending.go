package whatsapp

import (
	"sync"
	"time"
)

// DefaultPendingTTL is how long an unconfirmed item waits for a yes/no
const DefaultPendingTTL = 10 * time.Minute

type pendingEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// PendingStore holds one unconfirmed item per phone number until it expires.
// A newer item for the same phone replaces the older one.
type PendingStore[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]pendingEntry[T]
	now     func() time.Time
}

func NewPendingStore[T any](ttl time.Duration) *PendingStore[T] {
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &PendingStore[T]{
		ttl:     ttl,
		entries: make(map[string]pendingEntry[T]),
		now:     time.Now,
	}
}

// Put stores value for phone and returns when it expires
func (s *PendingStore[T]) Put(phone string, value T) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt := s.now().Add(s.ttl)
	s.entries[NormalizePhone(phone)] = pendingEntry[T]{value: value, expiresAt: expiresAt}
	return expiresAt
}

// Peek returns the live item for phone without removing it
func (s *PendingStore[T]) Peek(phone string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizePhone(phone)
	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Take removes and returns the live item for phone. Expired items are dropped and reported missing.
func (s *PendingStore[T]) Take(phone string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizePhone(phone)
	entry, ok := s.entries[key]
	delete(s.entries, key)

	if !ok || !s.now().Before(entry.expiresAt) {
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Sweep drops every expired entry and returns how many went
func (s *PendingStore[T]) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len counts stored entries, expired or not
func (s *PendingStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TTL is the lifetime given to new entries
func (s *PendingStore[T]) TTL() time.Duration {
	return s.ttl
}
