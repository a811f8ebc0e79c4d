package geospatial

import (
	"math"
	"strconv"
)

// EarthRadiusMeters is the mean Earth radius used by Haversine.
const EarthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points
// given in degrees. Inputs are not range-checked.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(dLambda/2)*math.Sin(dLambda/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// RoundTo rounds v to the given number of decimal places. The exact binary
// value of v is rounded, with exact ties going to the even digit, so 0.15
// (stored as 0.1499...) becomes 0.1 and 10.25 becomes 10.2.
func RoundTo(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
