// Package snipelist reads and rewrites the snipe-list JSON document:
//
//	{"snipe_wait_interval": 120, "use_pokesnipers": false, "locations": ["lat,lon", ...]}
//
// Keys other than "locations" are carried through rewrites untouched.
package snipelist

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/renameio/v2"
)

const (
	keyLocations    = "locations"
	keyWaitInterval = "snipe_wait_interval"
	keyPokesnipers  = "use_pokesnipers"

	// DefaultWaitInterval applies when the document has no snipe_wait_interval.
	DefaultWaitInterval = 120 * time.Second

	filePerm os.FileMode = 0o644
)

// Document is a parsed snipe list.
type Document struct {
	path      string
	raw       map[string]json.RawMessage
	locations []string
	isList    bool
}

// Read loads the document at path.
func Read(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return Parse(path, data)
}

// Parse decodes data as the document stored at path.
func Parse(path string, data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: top level is null", ErrInvalidJSON)
	}

	locRaw, ok := raw[keyLocations]
	if !ok {
		return nil, ErrMissingLocations
	}

	d := &Document{path: path, raw: raw}
	var locations []string
	if err := json.Unmarshal(locRaw, &locations); err == nil && locations != nil {
		d.locations = locations
		d.isList = true
	}
	return d, nil
}

// Path returns the file the document was read from.
func (d *Document) Path() string {
	return d.path
}

// Locations returns the stored locations and whether "locations" holds a list
// of strings at all.
func (d *Document) Locations() ([]string, bool) {
	return append([]string(nil), d.locations...), d.isList
}

// WaitInterval returns snipe_wait_interval, or DefaultWaitInterval when it is
// absent or not a non-negative number.
func (d *Document) WaitInterval() time.Duration {
	v, ok := d.raw[keyWaitInterval]
	if !ok {
		return DefaultWaitInterval
	}
	var seconds float64
	if err := json.Unmarshal(v, &seconds); err != nil || seconds < 0 {
		return DefaultWaitInterval
	}
	return time.Duration(seconds * float64(time.Second))
}

// UsePokesnipers reports whether external reports should be merged in.
func (d *Document) UsePokesnipers() bool {
	v, ok := d.raw[keyPokesnipers]
	if !ok {
		return false
	}
	var on bool
	if err := json.Unmarshal(v, &on); err != nil {
		return false
	}
	return on
}

// SetLocations replaces the stored locations.
func (d *Document) SetLocations(locations []string) error {
	if locations == nil {
		locations = []string{}
	}
	b, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	d.raw[keyLocations] = b
	d.locations = append([]string(nil), locations...)
	d.isList = true
	return nil
}

// Save atomically replaces the file with the current document.
func (d *Document) Save() error {
	data, err := json.Marshal(d.raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := renameio.WriteFile(d.path, data, filePerm); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, d.path, err)
	}
	return nil
}
