package snipe

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/okian/snipe/internal/adapters/repository"
	"github.com/okian/snipe/internal/adapters/snipelist"
	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/pkg/logger"
	"github.com/okian/snipe/pkg/metrics"
)

// Where a queued location came from.
const (
	SourceList   = "list"
	SourceReport = "report"
)

// Reasons a pass stops early or skips a location.
const (
	reasonRead       = "read"
	reasonInvalid    = "invalid"
	reasonExhausted  = "exhausted"
	reasonListWrite  = "list_write"
	reasonNotAList   = "not_a_list"
	reasonEmptyQueue = "empty"
)

// PassSummary describes one finished pass.
type PassSummary struct {
	ID        string `json:"id"`
	Queued    int    `json:"queued"`
	Attempts  int    `json:"attempts"`
	Skipped   int    `json:"skipped"`
	Remaining int    `json:"remaining"`
	Aborted   string `json:"aborted,omitempty"`
}

type location struct {
	raw    string
	source string
}

// RunPass reads the snipe list, merges live reports when the list asks for
// them and attempts each location in order. The file is rewritten after every
// attempt with the list entries not yet consumed; a failed rewrite ends the
// pass.
func (s *Sniper) RunPass(ctx context.Context) PassSummary {
	started := s.clock.Now()
	summary := PassSummary{ID: uuid.NewString()}
	passID := logger.String("pass_id", summary.ID)

	s.passes.Add(1)
	metrics.RecordPassRun()
	defer func() {
		metrics.RecordPassDuration(float64(s.clock.Now().Sub(started).Milliseconds()))
	}()

	s.logger.Info(ctx, "reading sniping list", passID, logger.String("path", s.listPath))
	doc, err := snipelist.Read(s.listPath)
	if err != nil {
		s.logReadError(ctx, err, passID)
		summary.Aborted = reasonRead
		metrics.RecordPassAborted(reasonRead)
		return summary
	}
	s.setWaitInterval(doc.WaitInterval())

	original, isList := doc.Locations()
	if !isList {
		s.logger.Warn(ctx, "sniping locations is not a list", passID)
		summary.Aborted = reasonNotAList
		metrics.RecordPassAborted(reasonNotAList)
		return summary
	}

	queue := make([]location, 0, len(original))
	for _, raw := range original {
		queue = append(queue, location{raw: raw, source: SourceList})
	}
	if doc.UsePokesnipers() {
		queue = append(queue, s.reportLocations(ctx, passID)...)
	}

	summary.Queued = len(queue)
	if len(queue) == 0 {
		s.logger.Warn(ctx, "no locations to snipe", passID)
		summary.Aborted = reasonEmptyQueue
		metrics.RecordPassAborted(reasonEmptyQueue)
		return summary
	}

	remaining := append([]string(nil), original...)
	summary.Remaining = len(remaining)

	for _, loc := range queue {
		if ctx.Err() != nil {
			return summary
		}
		if loc.source == SourceList {
			remaining = remaining[1:]
		}

		s.logger.Info(ctx, "found location", passID,
			logger.String("location", loc.raw), logger.String("source", loc.source))

		coord, err := geo.ParseCoordinate(loc.raw)
		if err != nil {
			s.logger.Error(ctx, "invalid location", passID, logger.String("location", loc.raw), logger.Error(err))
			s.skip(&summary, reasonInvalid)
			continue
		}

		if !s.cache.Admit(ctx, geo.Normalize(loc.raw)) {
			s.logger.Info(ctx, "ignoring coordinates tried too recently", passID, logger.String("location", loc.raw))
			s.skip(&summary, reasonExhausted)
			continue
		}
		metrics.UpdateCacheSize(int(s.cache.Size()))

		attemptStart := s.clock.Now()
		res, attemptErr := s.Attempt(ctx, coord)
		s.attempts.Add(1)
		summary.Attempts++
		s.record(ctx, summary.ID, loc, res, attemptErr, attemptStart)

		if err := s.persist(doc, remaining); err != nil {
			s.logger.Error(ctx, "failed to update sniping list", passID, logger.Error(err))
			metrics.RecordListWriteError()
			metrics.RecordPassAborted(reasonListWrite)
			summary.Aborted = reasonListWrite
			return summary
		}
		summary.Remaining = len(remaining)
		metrics.UpdateListRemaining(len(remaining))
	}

	s.logger.Info(ctx, "sniping pass finished", passID,
		logger.Int("attempts", summary.Attempts), logger.Int("skipped", summary.Skipped),
		logger.Int("remaining", summary.Remaining))
	return summary
}

func (s *Sniper) logReadError(ctx context.Context, err error, passID logger.Field) {
	switch {
	case errors.Is(err, snipelist.ErrInvalidJSON):
		s.logger.Error(ctx, "sniping list is not valid JSON", passID, logger.Error(err))
	case errors.Is(err, snipelist.ErrMissingLocations):
		s.logger.Error(ctx, "failed to parse sniping locations", passID, logger.Error(err))
	default:
		s.logger.Error(ctx, "error reading sniping list", passID, logger.Error(err))
	}
	metrics.RecordErrorByComponent("snipe", "list_read")
}

func (s *Sniper) reportLocations(ctx context.Context, passID logger.Field) []location {
	if s.reports == nil {
		s.logger.Warn(ctx, "sniping list asks for reports but no report source is configured", passID)
		return nil
	}

	active := s.reports.Active(ctx, s.clock.Now())
	out := make([]location, 0, len(active))
	for _, r := range active {
		out = append(out, location{raw: r.Coords, source: SourceReport})
	}
	return out
}

func (s *Sniper) skip(summary *PassSummary, reason string) {
	summary.Skipped++
	s.skipped.Add(1)
	metrics.RecordLocationSkipped(reason)
}

func (s *Sniper) persist(doc *snipelist.Document, remaining []string) error {
	if err := doc.SetLocations(remaining); err != nil {
		return err
	}
	return doc.Save()
}

func (s *Sniper) record(ctx context.Context, passID string, loc location, res Result, attemptErr error, started time.Time) {
	outcome := res.Outcome
	if attemptErr != nil {
		outcome = OutcomeFailed
	}
	metrics.RecordAttempt(string(outcome))

	if s.history == nil {
		return
	}

	a := repository.Attempt{
		ID:         uuid.NewString(),
		PassID:     passID,
		Coordinate: geo.Normalize(loc.raw),
		Source:     loc.source,
		Outcome:    string(outcome),
		Tries:      res.Tries,
		StartedAt:  started.UTC(),
		FinishedAt: s.clock.Now().UTC(),
	}
	if res.Pick != nil {
		a.SpeciesID = res.Pick.PokemonID
		a.SpeciesName = res.Pick.Name
		a.VIP = res.Pick.VIP
	}
	if attemptErr != nil {
		a.Error = attemptErr.Error()
	}

	// The attempt already happened; record it even when the pass is stopping.
	if err := s.history.Record(context.WithoutCancel(ctx), a); err != nil {
		s.logger.Warn(ctx, "failed to record attempt", logger.String("pass_id", passID), logger.Error(err))
		metrics.RecordHistoryWriteError()
	}
}
