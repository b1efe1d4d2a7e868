package geo

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// PathLengthKm sums the haversine lengths of a polyline given as [lng, lat] pairs.
func PathLengthKm(coords [][2]float64) float64 {
	total := 0.0
	for i := 1; i < len(coords); i++ {
		total += HaversineKm(coords[i-1][1], coords[i-1][0], coords[i][1], coords[i][0])
	}
	return total
}

// PointAlongPath returns the [lng, lat] position at the given fraction of the
// polyline's total length. Ratios outside [0,1] clamp to the endpoints.
func PointAlongPath(coords [][2]float64, ratio float64) [2]float64 {
	if len(coords) == 0 {
		return [2]float64{}
	}
	if ratio <= 0 || len(coords) == 1 {
		return coords[0]
	}
	if ratio >= 1 {
		return coords[len(coords)-1]
	}

	total := PathLengthKm(coords)
	if total == 0 {
		return coords[0]
	}

	target := total * ratio
	walked := 0.0
	for i := 1; i < len(coords); i++ {
		seg := HaversineKm(coords[i-1][1], coords[i-1][0], coords[i][1], coords[i][0])
		if walked+seg >= target {
			if seg == 0 {
				return coords[i]
			}
			frac := (target - walked) / seg
			return [2]float64{
				coords[i-1][0] + (coords[i][0]-coords[i-1][0])*frac,
				coords[i-1][1] + (coords[i][1]-coords[i-1][1])*frac,
			}
		}
		walked += seg
	}
	return coords[len(coords)-1]
}

// FormatDuration renders a second count as "1h 23m", "45m" or "30s".
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	s := int(math.Round(seconds))
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	minutes := s / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
