package game

import "errors"

var (
	// ErrInvalidPosition is returned for coordinates outside the globe.
	ErrInvalidPosition = errors.New("invalid position")

	// ErrUnknownEncounter is returned when completing an encounter the
	// simulator never started.
	ErrUnknownEncounter = errors.New("unknown encounter")
)
