package snipe_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/snipe/internal/adapters/reports"
	"github.com/okian/snipe/internal/domain/geo"
	"github.com/okian/snipe/internal/domain/target"
	"github.com/okian/snipe/pkg/logger"
)

// fakeClient replays map cells in order, then serves always, and records
// every call.
type fakeClient struct {
	mu        sync.Mutex
	pos       geo.Position
	cells     []target.Cell
	always    target.Cell
	calls     []string
	moves     []geo.Position
	mapErr    error
	moveErr   error
	mapCalls  int
	heartbeat int
	sessions  []geo.Coordinate
}

func (f *fakeClient) CheckSession(_ context.Context, at geo.Coordinate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "session")
	f.sessions = append(f.sessions, at)
	return nil
}

func (f *fakeClient) Heartbeat(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeat++
	f.calls = append(f.calls, "heartbeat")
	return nil
}

func (f *fakeClient) Position() geo.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeClient) SetPosition(_ context.Context, pos geo.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("move %s", pos.Coordinate()))
	if f.moveErr != nil {
		return f.moveErr
	}
	f.moves = append(f.moves, pos)
	f.pos = pos
	return nil
}

func (f *fakeClient) MapCell(_ context.Context) (target.Cell, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "map")
	f.mapCalls++
	if f.mapErr != nil {
		return target.Cell{}, f.mapErr
	}
	if len(f.cells) == 0 {
		return f.always, nil
	}
	cell := f.cells[0]
	f.cells = f.cells[1:]
	return cell, nil
}

func (f *fakeClient) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeCatcher struct {
	mu          sync.Mutex
	picks       []target.Pick
	completed   []target.Pick
	encounters  []target.Encounter
	encErr      error
	result      *target.Encounter
	onEncounter func()
	client      *fakeClient
}

func (f *fakeCatcher) Encounter(_ context.Context, p target.Pick) (target.Encounter, error) {
	f.mu.Lock()
	f.picks = append(f.picks, p)
	hook := f.onEncounter
	f.mu.Unlock()
	if f.client != nil {
		f.client.mu.Lock()
		f.client.calls = append(f.client.calls, "encounter")
		f.client.mu.Unlock()
	}
	if hook != nil {
		hook()
	}
	if f.encErr != nil {
		return target.Encounter{}, f.encErr
	}
	if f.result != nil {
		return *f.result, nil
	}
	return target.Encounter{Status: "ENCOUNTER_SUCCESS"}, nil
}

func (f *fakeCatcher) Complete(_ context.Context, p target.Pick, e target.Encounter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, p)
	f.encounters = append(f.encounters, e)
	if f.client != nil {
		f.client.mu.Lock()
		f.client.calls = append(f.client.calls, "complete")
		f.client.mu.Unlock()
	}
	return nil
}

func (f *fakeCatcher) Picks() []target.Pick {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]target.Pick(nil), f.picks...)
}

// fakeClock never blocks; sleeps only advance time.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Sleep(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
}

func (f *fakeClock) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}

type fakeReports struct {
	active []reports.Report
	calls  int
}

func (f *fakeReports) Active(_ context.Context, _ time.Time) []reports.Report {
	f.calls++
	return f.active
}

type fakeMarker struct {
	mu    sync.Mutex
	shown []any
}

func (f *fakeMarker) Flash(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, v)
	return nil
}

func catchable(cands ...target.Candidate) target.Cell {
	return target.Cell{Catchable: cands}
}

type logLine struct {
	level  string
	msg    string
	fields []logger.Field
}

// recordingLogger keeps every line it is given.
type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (r *recordingLogger) add(level, msg string, fields []logger.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, logLine{level: level, msg: msg, fields: fields})
}

func (r *recordingLogger) Info(_ context.Context, msg string, fields ...logger.Field) {
	r.add("info", msg, fields)
}

func (r *recordingLogger) Error(_ context.Context, msg string, fields ...logger.Field) {
	r.add("error", msg, fields)
}

func (r *recordingLogger) Debug(_ context.Context, msg string, fields ...logger.Field) {
	r.add("debug", msg, fields)
}

func (r *recordingLogger) Warn(_ context.Context, msg string, fields ...logger.Field) {
	r.add("warn", msg, fields)
}

func (r *recordingLogger) Fatal(_ context.Context, msg string, fields ...logger.Field) {
	r.add("fatal", msg, fields)
}

func (r *recordingLogger) Named(string) logger.Logger { return r }

func (r *recordingLogger) Find(msg string) (logLine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.msg == msg {
			return l, true
		}
	}
	return logLine{}, false
}
