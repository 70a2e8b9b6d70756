package coordcache

import "time"

// Option applies a configuration option to the cache.
type Option func(*expiringCache)

// WithBudget sets the number of tries granted when a key is first seen.
func WithBudget(budget int) Option {
	return func(c *expiringCache) {
		if budget > 0 {
			c.budget = budget
		}
	}
}

// WithTTL sets the fixed lifetime of an entry, counted from insertion.
func WithTTL(ttl time.Duration) Option {
	return func(c *expiringCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxLen bounds the number of entries. If maxLen <= 0 the cache is unbounded.
func WithMaxLen(maxLen int) Option {
	return func(c *expiringCache) {
		c.maxLen = maxLen
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *expiringCache) {
		if now != nil {
			c.now = now
		}
	}
}
