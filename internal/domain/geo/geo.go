// Package geo parses snipe coordinates and measures distances between them.
package geo

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const earthRadiusMeters = 6371000

// ErrInvalidCoordinate is returned for strings that are not "lat,lon".
var ErrInvalidCoordinate = errors.New("invalid coordinate")

var coordinatePattern = regexp.MustCompile(`^(-?\d+(\.\d+)?),\s*(-?\d+(\.\d+)?)$`)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Position is where the avatar stands, altitude included.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Alt float64 `json:"alt"`
}

// Coordinate drops the altitude.
func (p Position) Coordinate() Coordinate {
	return Coordinate{Lat: p.Lat, Lng: p.Lng}
}

// Normalize removes every space from raw, the form used for validation and as
// the recently-tried cache key.
func Normalize(raw string) string {
	return strings.Join(strings.Fields(raw), "")
}

// ParseCoordinate accepts "lat,lon" with optional whitespace around either part.
func ParseCoordinate(raw string) (Coordinate, error) {
	m := coordinatePattern.FindStringSubmatch(Normalize(raw))
	if m == nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidCoordinate, raw)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q: %w", ErrInvalidCoordinate, m[1], err)
	}
	lng, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q: %w", ErrInvalidCoordinate, m[3], err)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}

// String formats the coordinate the way snipe lists write it.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}

// Distance returns the great-circle distance in meters.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	Δφ := (lat2 - lat1) * math.Pi / 180
	Δλ := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(Δφ/2)*math.Sin(Δφ/2) +
		math.Cos(φ1)*math.Cos(φ2)*math.Sin(Δλ/2)*math.Sin(Δλ/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// DistanceTo is Distance from c to o.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	return Distance(c.Lat, c.Lng, o.Lat, o.Lng)
}
