package repository

import (
	"context"
	"sync"
)

const defaultCapacity = 100

// MemoryStore keeps the latest attempts in a fixed-size ring.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	ring     []Attempt
	next     int   // slot for the next write
	total    int64 // attempts ever recorded
}

// NewMemoryStore creates an in-memory store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(s)
	}
	s.ring = make([]Attempt, 0, s.capacity)
	return s
}

// Record appends a, overwriting the oldest attempt when full.
func (s *MemoryStore) Record(_ context.Context, a Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.ring) < s.capacity {
		s.ring = append(s.ring, a)
	} else {
		s.ring[s.next] = a
	}
	s.next = (s.next + 1) % s.capacity
	s.total++
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.ring)
	if limit > n {
		limit = n
	}
	out := make([]Attempt, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + s.capacity) % s.capacity
		out = append(out, s.ring[idx])
	}
	return out, nil
}

// Count returns the number of attempts currently held.
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.ring)), nil
}

// Total returns the number of attempts ever recorded, evicted ones included.
func (s *MemoryStore) Total() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
