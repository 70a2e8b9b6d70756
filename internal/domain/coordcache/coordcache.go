// Package coordcache remembers recently tried snipe coordinates and how many
// more tries each one is allowed inside its expiry window.
package coordcache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Default cache configuration constants.
const (
	defaultBudget = 2
	defaultTTL    = 5 * time.Minute
	defaultMaxLen = 100
)

// Cache tracks a retry budget per coordinate key.
type Cache interface {
	// Admit reports whether key may be attempted now and charges its budget:
	// an absent key is stored with the full budget, a present key with budget
	// left is decremented, and a present key with budget 0 is refused.
	Admit(ctx context.Context, key string) bool

	// Budget returns the remaining budget for a live key.
	Budget(ctx context.Context, key string) (int, bool)

	Size() int64
}

// entry is a node in the insertion-ordered list. Entries never move, so the
// head is always the one that expires first.
type entry struct {
	key       string
	budget    int
	expiresAt time.Time
	next      *entry
}

// expiringCache implements Cache with a map plus a FIFO list. Expired entries
// are swept from the head on every call; when the cache is full the oldest
// entry is evicted before inserting.
type expiringCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // oldest
	tail    *entry // newest
	budget  int
	ttl     time.Duration
	maxLen  int // 0 or negative = unbounded
	now     func() time.Time
	size    atomic.Int64
}

// New creates an expiring coordinate cache with configuration options.
func New(opts ...Option) Cache {
	c := &expiringCache{
		budget: defaultBudget,
		ttl:    defaultTTL,
		maxLen: defaultMaxLen,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*entry)
	return c
}

// Admit checks and charges key's budget.
func (c *expiringCache) Admit(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()

	if e, ok := c.entries[key]; ok {
		if e.budget <= 0 {
			return false
		}
		e.budget--
		return true
	}

	if c.maxLen > 0 && len(c.entries) >= c.maxLen {
		c.evictOldestLocked()
	}

	e := &entry{key: key, budget: c.budget, expiresAt: c.now().Add(c.ttl)}
	if c.tail == nil {
		c.head = e
	} else {
		c.tail.next = e
	}
	c.tail = e
	c.entries[key] = e
	c.size.Add(1)
	return true
}

// Budget returns the remaining budget for key if it is live.
func (c *expiringCache) Budget(ctx context.Context, key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	return e.budget, true
}

// Size returns the number of entries, possibly including some that expired
// since the last call.
func (c *expiringCache) Size() int64 {
	return c.size.Load()
}

// sweepLocked drops expired entries from the head. Must be called with c.mu held.
func (c *expiringCache) sweepLocked() {
	now := c.now()
	for c.head != nil && !now.Before(c.head.expiresAt) {
		c.evictOldestLocked()
	}
}

// evictOldestLocked removes the head entry. Must be called with c.mu held.
func (c *expiringCache) evictOldestLocked() {
	e := c.head
	if e == nil {
		return
	}
	c.head = e.next
	if c.head == nil {
		c.tail = nil
	}
	delete(c.entries, e.key)
	e.next = nil
	c.size.Add(-1)
}
