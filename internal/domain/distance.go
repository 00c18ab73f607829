package domain

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// HaversineDistance returns the great-circle distance in kilometres between
// two latitude/longitude points given in degrees, rounded half-to-even to two
// decimals. Coordinates are not range-checked. NaN or infinite inputs yield NaN.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	lat1 = radians(lat1)
	lat2 = radians(lat2)

	a := math.Pow(math.Sin(dLat/2), 2) + math.Pow(math.Sin(dLon/2), 2)*math.Cos(lat1)*math.Cos(lat2)
	// Rounding can push a just outside [0, 1] near antipodes, where asin is undefined.
	a = math.Min(math.Max(a, 0), 1)
	c := 2 * math.Asin(math.Sqrt(a))

	return scalar.RoundEven(EarthRadiusKm*c, 2)
}

// ValidCoordinate reports whether lat/lon are finite and within
// [-90, 90] x [-180, 180].
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
