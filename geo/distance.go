package geo

import "math"

// earthRadiusKM is the mean Earth radius used by the Haversine formula.
const earthRadiusKM = 6371.0

// DistanceKM returns the great-circle distance in kilometers between
// two points given in decimal degrees, rounded to two decimal places.
// The result is symmetric in its arguments and zero for identical
// points.
func DistanceKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return round2(earthRadiusKM * c)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
