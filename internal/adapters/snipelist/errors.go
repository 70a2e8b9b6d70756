package snipelist

import "errors"

// Sentinel error kinds for snipe-list reads and writes.
var (
	ErrRead             = errors.New("snipe list read failed")
	ErrInvalidJSON      = errors.New("snipe list is not valid JSON")
	ErrMissingLocations = errors.New("snipe list has no locations key")
	ErrWrite            = errors.New("snipe list write failed")
)
