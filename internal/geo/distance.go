package geo

import (
	"math"
	"strconv"
)

const earthRadiusM = 6371000

// Haversine returns the great-circle distance in meters between two lat/lon points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// FormatDistance renders meters as "850m" below one kilometer and "2.5km" above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return strconv.FormatFloat(math.Round(meters), 'f', 0, 64) + "m"
	}
	km := math.Round(meters/100) / 10
	return strconv.FormatFloat(km, 'f', -1, 64) + "km"
}

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceTo returns the haversine distance from p to q in meters.
func (p Point) DistanceTo(q Point) float64 {
	return Haversine(p.Lat, p.Lon, q.Lat, q.Lon)
}
