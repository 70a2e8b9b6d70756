// Package worker drives periodic bot tasks from a single ticker goroutine.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/snipe/pkg/logger"
	"github.com/okian/snipe/pkg/metrics"
)

const defaultInterval = time.Second

// Task is one unit of periodic work. Work reports whether it did anything on
// this tick.
type Task interface {
	Work(ctx context.Context, now time.Time) bool
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, now time.Time) bool

// Work calls f.
func (f TaskFunc) Work(ctx context.Context, now time.Time) bool { return f(ctx, now) }

// Runner calls its tasks in order on every tick. Tasks never overlap: a tick
// that arrives while a task is still running is dropped by the ticker.
type Runner struct {
	tasks    []Task
	interval time.Duration
	name     string
	now      func() time.Time

	// Shutdown control
	once     sync.Once
	shutdown chan struct{}
	done     chan struct{}

	mu    sync.Mutex
	ticks int64
	runs  int64

	logger logger.Logger
}

// NewRunner creates a Runner over tasks.
func NewRunner(tasks []Task, opts ...Option) *Runner {
	r := &Runner{
		tasks:    tasks,
		interval: defaultInterval,
		name:     "runner",
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("runner"),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.name != "runner" {
		r.logger = r.logger.Named(r.name)
	}

	return r
}

// Run ticks until ctx is canceled or Shutdown is called. The first tick
// happens immediately.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.shutdown:
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// Shutdown stops the loop and waits for the current tick to finish.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.once.Do(func() { close(r.shutdown) })

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		r.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Stats returns how many ticks ran and how many of them did work.
func (r *Runner) Stats() (ticks, runs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks, r.runs
}

func (r *Runner) tick(ctx context.Context) {
	now := r.now()
	worked := false
	for i, t := range r.tasks {
		if r.safeWork(ctx, i, t, now) {
			worked = true
		}
	}

	r.mu.Lock()
	r.ticks++
	if worked {
		r.runs++
	}
	r.mu.Unlock()
}

// safeWork keeps a panicking task from taking the loop down with it.
func (r *Runner) safeWork(ctx context.Context, i int, t Task, now time.Time) (worked bool) {
	defer func() {
		if rec := recover(); rec != nil {
			metrics.RecordErrorByComponent("runner", "task_panic")
			r.logger.Error(ctx, "task panicked", logger.Int("task", i), logger.Any("panic", rec))
			worked = false
		}
	}()
	return t.Work(ctx, now)
}
