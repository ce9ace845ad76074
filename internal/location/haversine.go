package location

import (
	"math"

	"github.com/ktecheletronicos/loja/internal/domain"
)

const earthRadiusKm = 6371

// Haversine returns the great-circle distance between two coordinates in
// kilometers, rounded to two decimal places. It is the fallback when no
// routing upstream is reachable.
func Haversine(from, to domain.Coordinate) float64 {
	lat1 := from.Latitude * math.Pi / 180
	lat2 := to.Latitude * math.Pi / 180
	deltaLat := (to.Latitude - from.Latitude) * math.Pi / 180
	deltaLng := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return domain.Round2(earthRadiusKm * c)
}
