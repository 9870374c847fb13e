package geo

import "math"

const (
	// earthRadiusMeters is the mean Earth radius used by the haversine formula.
	earthRadiusMeters = 6371000

	// ToleranceMeters absorbs ordinary GPS jitter at the geofence edge.
	ToleranceMeters = 2
)

// Circle is a registered circular boundary a worker must be inside to
// check in at a location.
type Circle struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

// Distance returns the great-circle distance between two coordinates in meters.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// IsWithin reports whether a position lies inside the boundary, allowing
// ToleranceMeters beyond the radius. The measured distance is returned
// rounded to the nearest meter.
func IsWithin(lat, lon float64, boundary Circle) (bool, int) {
	distance := Distance(lat, lon, boundary.Latitude, boundary.Longitude)
	within := distance <= boundary.RadiusMeters+ToleranceMeters
	return within, int(math.Round(distance))
}
