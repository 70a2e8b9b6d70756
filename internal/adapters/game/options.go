package game

import (
	"math/rand"
	"time"

	"github.com/okian/snipe/pkg/logger"
)

// Option applies a configuration option to the Simulator.
type Option func(*Simulator)

// WithLatencyRange sets the simulated round-trip latency range.
func WithLatencyRange(minLatency, maxLatency time.Duration) Option {
	return func(s *Simulator) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithSeed makes spawns and catch rolls reproducible.
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // simulation, not security
	}
}

// WithSpeciesCount bounds the species ids that spawn.
func WithSpeciesCount(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.speciesCount = n
		}
	}
}

// WithSpawnRadius sets how far from the avatar spawns appear, in meters.
func WithSpawnRadius(meters float64) Option {
	return func(s *Simulator) {
		if meters > 0 {
			s.spawnRadius = meters
		}
	}
}

// WithSpawnsPerCell sets the most candidates of each kind per map read.
func WithSpawnsPerCell(n int) Option {
	return func(s *Simulator) {
		if n >= 0 {
			s.maxSpawns = n
		}
	}
}

// WithCatchRate sets the chance a completed encounter ends in a catch.
func WithCatchRate(p float64) Option {
	return func(s *Simulator) {
		if p >= 0 && p <= 1 {
			s.catchRate = p
		}
	}
}

// WithSessionTTL sets how long a session stays valid before CheckSession
// refreshes it.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithClock sets the time source used for session expiry and spawn timers.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}
