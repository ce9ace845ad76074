package domain

import "errors"

// ErrNoSelection is returned when an operation needs a selected location
// and none has been recorded yet.
var ErrNoSelection = errors.New("no location selected")

// Coordinate is a WGS84 point.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// DistanceSource identifies how a distance was obtained.
type DistanceSource string

const (
	// DistanceSourceRoute means the routing service returned a driving route.
	DistanceSourceRoute DistanceSource = "route"
	// DistanceSourceStraightLine means the haversine fallback was used.
	DistanceSourceStraightLine DistanceSource = "straight_line"
)

// DistanceResult is the outcome of a distance resolution. It is recomputed
// on every location change and never cached across locations.
type DistanceResult struct {
	DistanceKm  float64        `json:"distance"`
	Unit        string         `json:"unit"`
	Origin      Coordinate     `json:"from"`
	Destination Coordinate     `json:"to"`
	Source      DistanceSource `json:"source"`
}

// Address holds the best-effort fields of a reverse-geocoded postal address.
// Any of them may be blank.
type Address struct {
	Street       string `json:"street"`
	HouseNumber  string `json:"house_number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
}

// IsZero reports whether no field was resolved.
func (a Address) IsZero() bool {
	return a == Address{}
}
