// Package game is an in-memory stand-in for the game client and catch
// routine. It keeps an avatar position, spawns creatures around it and plays
// out encounters, with a configurable round-trip latency.
package game

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/internal/domain/target"
	"github.com/okian/snipe/pkg/logger"
)

// Encounter and catch statuses, as the game reports them.
const (
	StatusEncounterSuccess  = "ENCOUNTER_SUCCESS"
	StatusEncounterNotFound = "ENCOUNTER_NOT_FOUND"
	StatusCatchSuccess      = "CATCH_SUCCESS"
	StatusCatchFlee         = "CATCH_FLEE"
)

const (
	defaultMinLatency   = 20 * time.Millisecond
	defaultMaxLatency   = 80 * time.Millisecond
	defaultRandomSeed   = 42
	defaultSpecies      = 151
	defaultSpawnRadius  = 70.0
	defaultMaxSpawns    = 3
	defaultCatchRate    = 0.7
	defaultSessionTTL   = 30 * time.Minute
	spawnLifetime       = 15 * time.Minute
	encounterRangeMeter = 100.0
	metersPerDegree     = 111320.0
)

// Stats counts what the simulator has seen.
type Stats struct {
	SessionRefreshes int64 `json:"sessionRefreshes"`
	Heartbeats       int64 `json:"heartbeats"`
	Teleports        int64 `json:"teleports"`
	MapReads         int64 `json:"mapReads"`
	Encounters       int64 `json:"encounters"`
	Caught           int64 `json:"caught"`
	Fled             int64 `json:"fled"`
	// Tracked is how many spawns are still waiting for an encounter.
	Tracked int `json:"tracked"`
}

// Simulator implements the game-client and catch-routine contracts.
type Simulator struct {
	mu  sync.Mutex
	pos geo.Position
	rng *rand.Rand

	minLatency   time.Duration
	maxLatency   time.Duration
	speciesCount int
	spawnRadius  float64
	maxSpawns    int
	catchRate    float64
	sessionTTL   time.Duration
	now          func() time.Time

	sessionExpiry time.Time
	spawned       map[uint64]target.Candidate
	open          map[uint64]target.Candidate
	stats         Stats

	logger logger.Logger
}

// New creates a Simulator with the avatar standing at home.
func New(home geo.Position, opts ...Option) *Simulator {
	s := &Simulator{
		pos:          home,
		rng:          rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible runs
		minLatency:   defaultMinLatency,
		maxLatency:   defaultMaxLatency,
		speciesCount: defaultSpecies,
		spawnRadius:  defaultSpawnRadius,
		maxSpawns:    defaultMaxSpawns,
		catchRate:    defaultCatchRate,
		sessionTTL:   defaultSessionTTL,
		now:          time.Now,
		spawned:      make(map[uint64]target.Candidate),
		open:         make(map[uint64]target.Candidate),
		logger:       logger.Get().Named("game"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CheckSession refreshes the session once it has expired.
func (s *Simulator) CheckSession(ctx context.Context, at geo.Coordinate) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Before(s.sessionExpiry) {
		return nil
	}
	s.sessionExpiry = now.Add(s.sessionTTL)
	s.stats.SessionRefreshes++
	s.logger.Info(ctx, "session refreshed", logger.String("at", at.String()))
	return nil
}

// Heartbeat keeps the session alive.
func (s *Simulator) Heartbeat(ctx context.Context) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.stats.Heartbeats++
	s.mu.Unlock()
	return nil
}

// Position returns where the avatar stands.
func (s *Simulator) Position() geo.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// SetPosition moves the avatar.
func (s *Simulator) SetPosition(_ context.Context, pos geo.Position) error {
	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos.Coordinate())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = pos
	s.stats.Teleports++
	return nil
}

// MapCell spawns a fresh set of creatures around the avatar.
func (s *Simulator) MapCell(ctx context.Context) (target.Cell, error) {
	if err := s.wait(ctx); err != nil {
		return target.Cell{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.MapReads++
	s.pruneLocked()
	cell := target.Cell{
		Catchable: s.spawnLocked(s.rng.Intn(s.maxSpawns + 1)),
		Wild:      s.spawnLocked(s.rng.Intn(s.maxSpawns + 1)),
	}
	for _, c := range cell.Catchable {
		s.spawned[c.EncounterID] = c
	}
	return cell, nil
}

// Encounter starts an encounter. Candidates that were never spawned, or that
// are out of reach of the avatar, come back as not found rather than as an
// error.
func (s *Simulator) Encounter(ctx context.Context, p target.Pick) (target.Encounter, error) {
	if err := s.wait(ctx); err != nil {
		return target.Encounter{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Encounters++
	s.pruneLocked()
	c, ok := s.spawned[p.EncounterID]
	if !ok || s.pos.Coordinate().DistanceTo(c.Coordinate()) > encounterRangeMeter {
		return target.Encounter{Status: StatusEncounterNotFound}, nil
	}
	delete(s.spawned, p.EncounterID)
	s.open[p.EncounterID] = c

	return target.Encounter{
		Status: StatusEncounterSuccess,
		Payload: map[string]any{
			"encounter_id": p.EncounterID,
			"pokemon_id":   c.PokemonID,
		},
	}, nil
}

// Complete throws at an open encounter. Encounters that did not start are
// ignored, as the game would.
func (s *Simulator) Complete(ctx context.Context, p target.Pick, e target.Encounter) error {
	if e.Status != StatusEncounterSuccess {
		s.logger.Info(ctx, "encounter did not start, nothing to catch",
			logger.String("name", p.Name), logger.String("status", e.Status))
		return nil
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.open[p.EncounterID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEncounter, p.EncounterID)
	}
	delete(s.open, p.EncounterID)

	status := StatusCatchFlee
	if s.rng.Float64() < s.catchRate {
		status = StatusCatchSuccess
		s.stats.Caught++
	} else {
		s.stats.Fled++
	}
	s.logger.Info(ctx, "catch finished",
		logger.String("name", p.Name), logger.Int("pokemon_id", p.PokemonID), logger.String("status", status))
	return nil
}

// Stats returns a snapshot of the counters.
func (s *Simulator) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stats
	st.Tracked = len(s.spawned)
	return st
}

// pruneLocked forgets spawns whose despawn time has passed.
func (s *Simulator) pruneLocked() {
	now := s.now().UnixMilli()
	for id, c := range s.spawned {
		if c.ExpirationTimestampMS <= now {
			delete(s.spawned, id)
		}
	}
}

func (s *Simulator) spawnLocked(n int) []target.Candidate {
	out := make([]target.Candidate, 0, n)
	expires := s.now().Add(spawnLifetime).UnixMilli()
	for i := 0; i < n; i++ {
		// Uniform over the disc around the avatar.
		r := s.spawnRadius * math.Sqrt(s.rng.Float64())
		theta := 2 * math.Pi * s.rng.Float64()
		dLat := r * math.Cos(theta) / metersPerDegree
		dLng := r * math.Sin(theta) / (metersPerDegree * math.Max(math.Cos(s.pos.Lat*math.Pi/180), 1e-6))

		out = append(out, target.Candidate{
			EncounterID:           s.rng.Uint64(),
			SpawnPointID:          fmt.Sprintf("%x", s.rng.Int63()),
			PokemonID:             1 + s.rng.Intn(s.speciesCount),
			Latitude:              s.pos.Lat + dLat,
			Longitude:             s.pos.Lng + dLng,
			ExpirationTimestampMS: expires,
		})
	}
	return out
}

// wait simulates a round trip to the game servers.
func (s *Simulator) wait(ctx context.Context) error {
	s.mu.Lock()
	latency := s.minLatency
	if span := s.maxLatency - s.minLatency; span > 0 {
		latency += time.Duration(s.rng.Int63n(int64(span)))
	}
	s.mu.Unlock()

	if latency <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
		return nil
	}
}
