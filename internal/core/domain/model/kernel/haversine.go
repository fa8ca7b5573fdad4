package kernel

import "math"

// EarthRadiusKm is the mean Earth radius used by HaversineDistance.
const EarthRadiusKm = 6371.0

// HaversineDistance returns the great-circle distance between two points in
// kilometers, rounded to one decimal place. The result is symmetric and is
// 0 for identical points.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(EarthRadiusKm*c*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
