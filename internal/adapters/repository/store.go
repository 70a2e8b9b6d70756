// Package repository stores the history of snipe attempts.
package repository

import (
	"context"
	"time"
)

// Attempt is one finished snipe attempt.
type Attempt struct {
	ID          string    `json:"id"`
	PassID      string    `json:"pass_id"`
	Coordinate  string    `json:"coordinate"`
	Source      string    `json:"source"`
	Outcome     string    `json:"outcome"`
	SpeciesID   int       `json:"species_id,omitempty"`
	SpeciesName string    `json:"species_name,omitempty"`
	VIP         bool      `json:"vip,omitempty"`
	Tries       int       `json:"tries"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Store provides write and read access to attempt history.
type Store interface {
	// Record appends an attempt.
	Record(ctx context.Context, a Attempt) error

	// Recent returns up to limit attempts, newest first.
	// Returns ErrInvalidLimit when limit is not positive.
	Recent(ctx context.Context, limit int) ([]Attempt, error)

	// Count returns the number of attempts held.
	Count(ctx context.Context) (int64, error)
}
