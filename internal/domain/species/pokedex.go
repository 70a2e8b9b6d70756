// Package species resolves species ids to names.
package species

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrLoadPokedex wraps failures reading or decoding the catalogue file.
var ErrLoadPokedex = errors.New("load pokedex failed")

// Entry is one row of the catalogue file.
type Entry struct {
	Number string `json:"Number"`
	Name   string `json:"Name"`
}

// Pokedex maps species ids (1-based) to names.
type Pokedex struct {
	names []string
}

// New builds a Pokedex where names[0] is species 1.
func New(names ...string) *Pokedex {
	return &Pokedex{names: append([]string(nil), names...)}
}

// Load reads a JSON array of {"Number", "Name"} rows ordered by species id.
func Load(path string) (*Pokedex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadPokedex, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadPokedex, path, err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return &Pokedex{names: names}, nil
}

// Name returns the species name for id.
func (p *Pokedex) Name(id int) (string, bool) {
	if p == nil || id < 1 || id > len(p.names) {
		return "", false
	}
	return p.names[id-1], true
}

// Len returns the number of known species.
func (p *Pokedex) Len() int {
	if p == nil {
		return 0
	}
	return len(p.names)
}
