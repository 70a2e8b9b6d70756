// Package service wires the snipe task, its collaborators and the runner
// together, and exposes what the status API needs.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/snipe/internal/adapters/display"
	"github.com/okian/snipe/internal/adapters/game"
	"github.com/okian/snipe/internal/adapters/reports"
	"github.com/okian/snipe/internal/adapters/repository"
	"github.com/okian/snipe/internal/adapters/worker"
	"github.com/okian/snipe/internal/app/snipe"
	"github.com/okian/snipe/internal/domain/coordcache"
	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/internal/domain/species"
	"github.com/okian/snipe/internal/domain/target"
	"github.com/okian/snipe/pkg/logger"
	"github.com/okian/snipe/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service owns the bot's components for one process.
type Service struct {
	mu sync.RWMutex

	// Core components
	sniper  *snipe.Sniper
	sim     *game.Simulator
	history repository.Store
	cache   coordcache.Cache
	runner  *worker.Runner
	cancel  context.CancelFunc

	// Configuration
	snipeList     string
	username      string
	pokedexPath   string
	vips          []string
	webDir        string
	tickInterval  time.Duration
	retryDelay    time.Duration
	defaultWait   time.Duration
	cacheTTL      time.Duration
	cacheMaxLen   int
	reportsURL    string
	reportHorizon time.Duration
	reportTimeout time.Duration
	historyDSN    string
	historySize   int
	home          geo.Position
	simMinLatency time.Duration
	simMaxLatency time.Duration
	simSeed       int64

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		username:      "bot",
		tickInterval:  time.Second,
		retryDelay:    2 * time.Second,
		defaultWait:   120 * time.Second,
		cacheTTL:      5 * time.Minute,
		cacheMaxLen:   100,
		reportHorizon: time.Minute,
		reportTimeout: 10 * time.Second,
		historySize:   100,
		home:          geo.Position{Lat: 40.7681, Lng: -73.9819},
		simMinLatency: 20 * time.Millisecond,
		simMaxLatency: 80 * time.Millisecond,
		logger:        nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the components and starts the runner.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting snipe service...")

	dex := s.loadPokedex(ctx)

	history, err := s.openHistory(ctx)
	if err != nil {
		return err
	}

	s.cache = coordcache.New(
		coordcache.WithTTL(s.cacheTTL),
		coordcache.WithMaxLen(s.cacheMaxLen),
	)

	seed := s.simSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	simOpts := []game.Option{
		game.WithLatencyRange(s.simMinLatency, s.simMaxLatency),
		game.WithSeed(seed),
	}
	if dex.Len() > 0 {
		simOpts = append(simOpts, game.WithSpeciesCount(dex.Len()))
	}
	s.sim = game.New(s.home, simOpts...)

	snipeOpts := []snipe.Option{
		snipe.WithSelector(target.NewSelector(dex, s.vips...)),
		snipe.WithCache(s.cache),
		snipe.WithHistory(history),
		snipe.WithDelay(s.retryDelay),
		snipe.WithWaitInterval(s.defaultWait),
	}
	if s.webDir != "" {
		snipeOpts = append(snipeOpts, snipe.WithDisplay(display.NewMarker(s.webDir, s.username)))
	}
	if s.reportsURL != "" {
		fetcher, err := reports.NewFetcher(s.reportsURL,
			reports.WithHorizon(s.reportHorizon),
			reports.WithTimeout(s.reportTimeout),
		)
		if err != nil {
			closeHistory(history)
			return fmt.Errorf("create report fetcher: %w", err)
		}
		snipeOpts = append(snipeOpts, snipe.WithReports(fetcher))
	}
	s.history = history
	s.sniper = snipe.New(s.snipeList, s.sim, s.sim, snipeOpts...)

	if s.snipeList == "" {
		s.logger.Warn(ctx, "no snipe list configured; sniping is disabled")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.runner = worker.NewRunner([]worker.Task{s.sniper},
		worker.WithName("snipe"),
		worker.WithInterval(s.tickInterval),
	)
	go s.runner.Run(runCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "snipe service started",
		logger.String("snipeList", s.snipeList),
		logger.String("username", s.username),
		logger.Strings("vips", s.vips),
		logger.Int("species", dex.Len()),
		logger.Duration("tickInterval", s.tickInterval),
	)

	return nil
}

// Stop waits for the running pass to finish and releases the history store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping snipe service...")

	// Cancel first so an in-flight pass stops at the next location instead
	// of running on while Shutdown waits.
	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.runner.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "runner did not stop in time", logger.Error(err))
	}

	closeHistory(s.history)

	s.started = false
	s.logger.Info(ctx, "snipe service stopped")
}

// History returns up to limit recent attempts, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]repository.Attempt, error) {
	s.mu.RLock()
	history := s.history
	s.mu.RUnlock()

	if history == nil {
		return []repository.Attempt{}, nil
	}
	return history.Recent(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":      s.started,
		"username":     s.username,
		"snipeList":    s.snipeList,
		"tickInterval": s.tickInterval.String(),
	}

	if s.started {
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		stats["snipe"] = s.sniper.GetStats()
		stats["game"] = s.sim.Stats()
		stats["position"] = s.sim.Position()

		ticks, runs := s.runner.Stats()
		stats["ticks"] = ticks
		stats["passesRun"] = runs

		if n, err := s.history.Count(ctx); err == nil {
			stats["historyCount"] = n
		}

		metrics.UpdateCacheSize(int(s.cache.Size()))
	}

	return stats
}

func (s *Service) loadPokedex(ctx context.Context) *species.Pokedex {
	if s.pokedexPath == "" {
		return species.New()
	}
	dex, err := species.Load(s.pokedexPath)
	if err != nil {
		s.logger.Warn(ctx, "pokedex unavailable; VIP species cannot match",
			logger.String("path", s.pokedexPath), logger.Error(err))
		return species.New()
	}
	return dex
}

func (s *Service) openHistory(ctx context.Context) (repository.Store, error) {
	if s.historyDSN == "" {
		return repository.NewMemoryStore(repository.WithCapacity(s.historySize)), nil
	}

	db, err := repository.OpenPostgres(s.historyDSN)
	if err != nil {
		return nil, fmt.Errorf("open attempt history: %w", err)
	}
	store, err := repository.NewGormStore(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("open attempt history: %w", err)
	}
	s.logger.Info(ctx, "using postgres attempt history")
	return store, nil
}

func closeHistory(h repository.Store) {
	if closer, ok := h.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
