package delivery

import (
	"math"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/corridor"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/traffic"
)

// corridorSpeedKmh resolves the speed for one corridor:
//
//	live sample present and positive -> capped live speed
//	otherwise                        -> capped default
func corridorSpeedKmh(cache *traffic.Cache, corridorID string, defaultKmh, maxKmh float64) float64 {
	if cache != nil {
		if s, ok := cache.Lookup(corridorID); ok && s.SpeedKmh > 0 {
			return math.Min(s.SpeedKmh, maxKmh)
		}
	}
	return math.Min(defaultKmh, maxKmh)
}

// pathAverageSpeedKmh is the length-weighted mean corridor speed over a
// stitched path. Zero-length segments are skipped; a path with no measurable
// length falls back to the capped default.
func pathAverageSpeedKmh(cache *traffic.Cache, path *corridor.StitchedPath, defaultKmh, maxKmh float64) float64 {
	if path == nil {
		return math.Min(defaultKmh, maxKmh)
	}

	totalKm := 0.0
	weighted := 0.0
	for _, seg := range path.Segments {
		if seg.LengthKm <= 0 {
			continue
		}
		speed := corridorSpeedKmh(cache, seg.CorridorID, defaultKmh, maxKmh)
		weighted += speed * seg.LengthKm
		totalKm += seg.LengthKm
	}
	if totalKm == 0 {
		return math.Min(defaultKmh, maxKmh)
	}
	return weighted / totalKm
}
