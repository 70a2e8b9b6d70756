// Package snipe runs snipe-list passes: teleport to each listed coordinate,
// pick a creature there, hand it to the catch routine and come back.
package snipe

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/snipe/internal/adapters/reports"
	"github.com/okian/snipe/internal/adapters/repository"
	"github.com/okian/snipe/internal/adapters/snipelist"
	"github.com/okian/snipe/internal/domain/coordcache"
	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/internal/domain/target"
	"github.com/okian/snipe/pkg/logger"
	"github.com/okian/snipe/pkg/metrics"
)

const defaultDelay = 2 * time.Second

// Client is the game-client surface a snipe needs.
type Client interface {
	// CheckSession refreshes the session if it expired, reporting the
	// avatar's current position.
	CheckSession(ctx context.Context, at geo.Coordinate) error
	Heartbeat(ctx context.Context) error
	Position() geo.Position
	SetPosition(ctx context.Context, pos geo.Position) error
	MapCell(ctx context.Context) (target.Cell, error)
}

// Catcher is the external catch routine.
type Catcher interface {
	// Encounter starts an encounter with the picked candidate.
	Encounter(ctx context.Context, p target.Pick) (target.Encounter, error)
	// Complete finishes the catch once the avatar is back home.
	Complete(ctx context.Context, p target.Pick, e target.Encounter) error
}

// ReportSource supplies extra coordinates from third-party sightings.
type ReportSource interface {
	Active(ctx context.Context, now time.Time) []reports.Report
}

// Displayer receives best-effort "currently viewing" hints.
type Displayer interface {
	Flash(v any) error
}

// Clock abstracts wall time and the blocking waits around teleports.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Sniper is the snipe task. Work is its scheduler entry point.
type Sniper struct {
	listPath string
	client   Client
	catcher  Catcher

	selector *target.Selector
	cache    coordcache.Cache
	reports  ReportSource
	marker   Displayer
	history  repository.Store
	clock    Clock
	delay    time.Duration
	logger   logger.Logger

	// Scheduler gate
	mu           sync.Mutex
	waitInterval time.Duration
	lastRun      time.Time
	hasRun       bool
	lastPass     PassSummary

	// Counters for GetStats
	passes   atomic.Int64
	attempts atomic.Int64
	skipped  atomic.Int64
}

// New creates a Sniper reading listPath. An empty listPath disables it.
func New(listPath string, client Client, catcher Catcher, opts ...Option) *Sniper {
	s := &Sniper{
		listPath:     listPath,
		client:       client,
		catcher:      catcher,
		selector:     target.NewSelector(nil),
		cache:        coordcache.New(),
		clock:        realClock{},
		delay:        defaultDelay,
		waitInterval: snipelist.DefaultWaitInterval,
		logger:       logger.Get().Named("snipe"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Work runs a pass when none has run yet or the wait interval has elapsed
// since the last one; otherwise it only logs how long is left. It reports
// whether a pass ran.
func (s *Sniper) Work(ctx context.Context, now time.Time) bool {
	if s.listPath == "" {
		return false
	}

	s.mu.Lock()
	if s.hasRun {
		if elapsed := now.Sub(s.lastRun); elapsed < s.waitInterval {
			left := s.waitInterval - elapsed
			s.mu.Unlock()
			metrics.RecordPassSkipped()
			s.logger.Info(ctx, "waiting for next sniping pass", logger.Float64("seconds_left", left.Seconds()))
			return false
		}
	}
	s.mu.Unlock()

	summary := s.RunPass(ctx)

	s.mu.Lock()
	s.lastRun = now
	s.hasRun = true
	s.lastPass = summary
	s.mu.Unlock()
	return true
}

// WaitInterval returns the interval currently enforced between passes.
func (s *Sniper) WaitInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waitInterval
}

func (s *Sniper) setWaitInterval(d time.Duration) {
	s.mu.Lock()
	s.waitInterval = d
	s.mu.Unlock()
}

// GetStats reports counters for the status API.
func (s *Sniper) GetStats() map[string]interface{} {
	s.mu.Lock()
	last := s.lastPass
	lastRun := s.lastRun
	hasRun := s.hasRun
	interval := s.waitInterval
	s.mu.Unlock()

	stats := map[string]interface{}{
		"enabled":             s.listPath != "",
		"snipeList":           s.listPath,
		"passes":              s.passes.Load(),
		"attempts":            s.attempts.Load(),
		"skippedLocations":    s.skipped.Load(),
		"waitIntervalSeconds": interval.Seconds(),
		"cachedCoordinates":   s.cache.Size(),
	}
	if hasRun {
		stats["lastRun"] = lastRun.UTC().Format(time.RFC3339)
		stats["lastPass"] = last
	}
	return stats
}
