package station

import (
	"math"

	"github.com/riyashastri4/nh-fuel-finder/internal/models"
)

const earthRadiusKm = 6371.0

// CalculateDistance returns the haversine distance between two points in kilometres.
func CalculateDistance(from, to models.Coordinates) float64 {
	dLat := toRadians(to.Lat - from.Lat)
	dLon := toRadians(to.Lon - from.Lon)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(from.Lat))*math.Cos(toRadians(to.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithDistances returns a copy of stations with DistanceKm set relative to ref.
func WithDistances(stations []models.Station, ref models.Coordinates) []models.Station {
	out := make([]models.Station, len(stations))
	for i, s := range stations {
		d := CalculateDistance(ref, s.Coordinates)
		s.DistanceKm = &d
		out[i] = s
	}
	return out
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
