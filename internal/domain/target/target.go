// Package target models creature sightings around the avatar and picks the
// one a snipe should go after.
package target

import (
	"sort"

	"github.com/okian/snipe/internal/domain/geo"
)

// Kind tells which list of the map cell a candidate came from.
type Kind string

const (
	// Catchable sightings carry a time-limited encounter.
	Catchable Kind = "catchable"
	// Wild sightings are ambient.
	Wild Kind = "wild"
)

// Candidate is one creature sighting as the game client reports it.
type Candidate struct {
	EncounterID           uint64  `json:"encounter_id"`
	SpawnPointID          string  `json:"spawn_point_id"`
	PokemonID             int     `json:"pokemon_id"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	ExpirationTimestampMS int64   `json:"expiration_timestamp_ms,omitempty"`
}

// Coordinate returns where the candidate stands.
func (c Candidate) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: c.Latitude, Lng: c.Longitude}
}

// Cell is the part of the map response the snipe looks at.
type Cell struct {
	Catchable []Candidate `json:"catchable_pokemons"`
	Wild      []Candidate `json:"wild_pokemons"`
}

// Pick is the selected candidate plus what the selection learned about it.
type Pick struct {
	Candidate
	Kind     Kind
	Name     string
	VIP      bool
	Distance float64
}

// Encounter is what the catch routine's first step returned.
type Encounter struct {
	Status  string         `json:"status"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Namer resolves species ids; *species.Pokedex satisfies it.
type Namer interface {
	Name(id int) (string, bool)
}

// Selector applies the catch preference order: catchable before wild, a VIP
// species before the nearest catchable, nearest otherwise.
type Selector struct {
	namer Namer
	vips  map[string]struct{}
}

// NewSelector builds a Selector. namer may be nil, in which case no VIP can match.
func NewSelector(namer Namer, vips ...string) *Selector {
	set := make(map[string]struct{}, len(vips))
	for _, v := range vips {
		set[v] = struct{}{}
	}
	return &Selector{namer: namer, vips: set}
}

// IsVIP reports whether name is configured as a priority species.
func (s *Selector) IsVIP(name string) bool {
	_, ok := s.vips[name]
	return ok
}

// Select picks a candidate from cell, measuring distances from from. The cell
// is not modified.
func (s *Selector) Select(cell Cell, from geo.Coordinate) (Pick, bool) {
	if len(cell.Catchable) > 0 {
		sorted := byDistance(cell.Catchable, from)
		pick := s.pick(sorted[0], Catchable, from)

		// Every VIP match overrides the pick, so the farthest VIP wins unless
		// the nearest candidate is itself a VIP.
		for i, c := range sorted {
			name, ok := s.name(c.PokemonID)
			if ok && s.IsVIP(name) {
				pick = s.pick(c, Catchable, from)
				if i == 0 {
					break
				}
			}
		}
		return pick, true
	}

	if len(cell.Wild) > 0 {
		sorted := byDistance(cell.Wild, from)
		return s.pick(sorted[0], Wild, from), true
	}

	return Pick{}, false
}

func (s *Selector) pick(c Candidate, kind Kind, from geo.Coordinate) Pick {
	name, _ := s.name(c.PokemonID)
	return Pick{
		Candidate: c,
		Kind:      kind,
		Name:      name,
		VIP:       name != "" && s.IsVIP(name),
		Distance:  from.DistanceTo(c.Coordinate()),
	}
}

func (s *Selector) name(id int) (string, bool) {
	if s.namer == nil {
		return "", false
	}
	return s.namer.Name(id)
}

// byDistance returns a copy of in ordered nearest first; ties keep input order.
func byDistance(in []Candidate, from geo.Coordinate) []Candidate {
	out := append([]Candidate(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return from.DistanceTo(out[i].Coordinate()) < from.DistanceTo(out[j].Coordinate())
	})
	return out
}
