package snipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/internal/domain/target"
	"github.com/okian/snipe/pkg/logger"
	"github.com/okian/snipe/pkg/metrics"
)

// Outcome is how a single attempt ended.
type Outcome string

const (
	// OutcomeEncountered means a candidate was handed to the catch routine.
	OutcomeEncountered Outcome = "encountered"
	// OutcomeNoCandidate means nothing was found on either try.
	OutcomeNoCandidate Outcome = "no_candidate"
	// OutcomeFailed means a client or catch call returned an error.
	OutcomeFailed Outcome = "failed"
)

// Result describes one attempt at one coordinate.
type Result struct {
	Outcome   Outcome
	Tries     int
	Pick      *target.Pick
	Encounter *target.Encounter
}

type tryState int

const (
	stateFirstTry tryState = iota
	stateRetry
	stateDone
)

// Attempt teleports to at, looks for a candidate, retries once after a
// doubled delay when nothing is found, and always brings the avatar back to
// where it started.
func (s *Sniper) Attempt(ctx context.Context, at geo.Coordinate) (Result, error) {
	started := s.clock.Now()
	defer func() {
		metrics.RecordAttemptDuration(float64(s.clock.Now().Sub(started).Milliseconds()))
	}()

	var (
		res        Result
		home       geo.Position
		teleported bool
	)

	for state := stateFirstTry; state != stateDone; {
		res.Tries++

		if err := s.keepAlive(ctx); err != nil {
			return s.fail(ctx, res, home, teleported, err)
		}

		if state == stateFirstTry {
			home = s.client.Position()
			s.logger.Info(ctx, "teleporting to location", logger.String("coords", at.String()))
			if err := s.client.SetPosition(ctx, geo.Position{Lat: at.Lat, Lng: at.Lng}); err != nil {
				return s.fail(ctx, res, home, false, fmt.Errorf("%w: %w", ErrTeleport, err))
			}
			teleported = true
		}

		cell, err := s.client.MapCell(ctx)
		if err != nil {
			return s.fail(ctx, res, home, teleported, fmt.Errorf("%w: %w", ErrMapCell, err))
		}

		s.flash(ctx, cell.Catchable)

		if pick, ok := s.selector.Select(cell, s.client.Position().Coordinate()); ok {
			res.Pick = &pick
			return s.catch(ctx, res, home)
		}

		if state == stateFirstTry {
			s.logger.Warn(ctx, "no pokemon found, retrying once", logger.String("coords", at.String()))
			metrics.RecordAttemptRetry()
			s.clock.Sleep(2 * s.delay)
			state = stateRetry
			continue
		}

		s.logger.Warn(ctx, "no pokemon found at location", logger.String("coords", at.String()))
		if err := s.returnHome(ctx, home); err != nil {
			res.Outcome = OutcomeFailed
			return res, err
		}
		res.Outcome = OutcomeNoCandidate
		state = stateDone
	}

	return res, nil
}

// keepAlive checks the session from wherever the avatar currently stands,
// which on the first try is still home.
func (s *Sniper) keepAlive(ctx context.Context) error {
	if err := s.client.CheckSession(ctx, s.client.Position().Coordinate()); err != nil {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	return nil
}

// catch starts the encounter at the snipe location, returns home and lets the
// catch routine finish from there. The trip home happens even when the
// encounter failed.
func (s *Sniper) catch(ctx context.Context, res Result, home geo.Position) (Result, error) {
	pick := *res.Pick
	s.logger.Info(ctx, "catching pokemon",
		logger.String("name", pick.Name),
		logger.Bool("vip", pick.VIP),
		logger.String("kind", string(pick.Kind)),
		logger.Float64("distance_m", pick.Distance))

	enc, encErr := s.catcher.Encounter(ctx, pick)
	s.clock.Sleep(s.delay)

	homeErr := s.returnHome(ctx, home)

	if encErr != nil {
		res.Outcome = OutcomeFailed
		return res, errors.Join(fmt.Errorf("%w: %w", ErrEncounter, encErr), homeErr)
	}
	res.Encounter = &enc
	if homeErr != nil {
		res.Outcome = OutcomeFailed
		return res, homeErr
	}

	if err := s.catcher.Complete(ctx, pick, enc); err != nil {
		res.Outcome = OutcomeFailed
		return res, fmt.Errorf("%w: %w", ErrEncounter, err)
	}

	res.Outcome = OutcomeEncountered
	return res, nil
}

// returnHome puts the avatar back, waits one delay and sends a heartbeat.
func (s *Sniper) returnHome(ctx context.Context, home geo.Position) error {
	if err := s.client.SetPosition(ctx, home); err != nil {
		return fmt.Errorf("%w: %w", ErrTeleport, err)
	}
	s.clock.Sleep(s.delay)
	if err := s.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	return nil
}

func (s *Sniper) fail(ctx context.Context, res Result, home geo.Position, teleported bool, err error) (Result, error) {
	res.Outcome = OutcomeFailed
	if teleported {
		if homeErr := s.client.SetPosition(ctx, home); homeErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %w", ErrTeleport, homeErr))
		}
	}
	s.logger.Error(ctx, "snipe attempt failed", logger.Error(err))
	metrics.RecordErrorByComponent("snipe", "attempt")
	return res, err
}

func (s *Sniper) flash(ctx context.Context, catchable []target.Candidate) {
	if s.marker == nil {
		return
	}
	for _, c := range catchable {
		if err := s.marker.Flash(c); err != nil {
			s.logger.Debug(ctx, "failed to write display marker", logger.Error(err))
		}
	}
}
