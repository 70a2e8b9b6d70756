package snipe

import (
	"time"

	"github.com/okian/snipe/internal/adapters/repository"
	"github.com/okian/snipe/internal/domain/coordcache"
	"github.com/okian/snipe/internal/domain/target"
	"github.com/okian/snipe/pkg/logger"
)

// Option applies a configuration option to the Sniper.
type Option func(*Sniper)

// WithSelector sets the candidate selector (VIP species, pokedex).
func WithSelector(sel *target.Selector) Option {
	return func(s *Sniper) {
		if sel != nil {
			s.selector = sel
		}
	}
}

// WithCache sets the recently-tried coordinate cache.
func WithCache(c coordcache.Cache) Option {
	return func(s *Sniper) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithReports enables merging third-party reports when a list asks for them.
func WithReports(r ReportSource) Option {
	return func(s *Sniper) {
		s.reports = r
	}
}

// WithDisplay sets the "currently viewing" marker.
func WithDisplay(d Displayer) Option {
	return func(s *Sniper) {
		s.marker = d
	}
}

// WithHistory records every attempt in store.
func WithHistory(store repository.Store) Option {
	return func(s *Sniper) {
		s.history = store
	}
}

// WithClock replaces wall time and sleeping, mainly for tests.
func WithClock(c Clock) Option {
	return func(s *Sniper) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithDelay sets the base wait around teleports.
func WithDelay(d time.Duration) Option {
	return func(s *Sniper) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithWaitInterval sets the interval used until a list provides its own.
func WithWaitInterval(d time.Duration) Option {
	return func(s *Sniper) {
		if d >= 0 {
			s.waitInterval = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Sniper) {
		if l != nil {
			s.logger = l
		}
	}
}
