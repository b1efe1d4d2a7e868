package corridor

import (
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/shared/geo"
)

// GeometrySource is the minimal corridor lookup the stitcher needs.
// *Store satisfies it.
type GeometrySource interface {
	Geometry(id string) (Geometry, bool)
}

// Segment is one corridor's contribution to a stitched path.
type Segment struct {
	CorridorID string  `json:"corridor_id"`
	LengthKm   float64 `json:"length_km"`
}

// StitchedPath is a continuous plant-to-site polyline assembled from
// individual corridor geometries.
type StitchedPath struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Segments    []Segment    `json:"segments"`
}

func (p *StitchedPath) SegmentCount() int {
	return len(p.Segments)
}

func (p *StitchedPath) TotalLengthKm() float64 {
	return geo.PathLengthKm(p.Coordinates)
}

// junction points closer than this (in squared degrees) are duplicates
const junctionEpsilon = 1e-10

type candidate struct {
	corridorID string
	coords     [][2]float64
}

// Stitch orders the given corridors into one continuous path, walking from
// the anchor and greedily taking whichever unused part has the nearest
// endpoint. Parts whose far endpoint is nearer are appended reversed.
// Corridors missing from src or with fewer than two coordinates are skipped;
// nil is returned when nothing usable remains.
//
// Nearness uses squared lng/lat distance. That is not geodesic, but it only
// breaks ties on ordering; distance accounting is haversine.
func Stitch(src GeometrySource, corridorIDs []string, anchor [2]float64) *StitchedPath {
	var pool []candidate
	for _, id := range corridorIDs {
		g, ok := src.Geometry(id)
		if !ok {
			continue
		}
		for _, line := range g.Lines() {
			if len(line) < 2 {
				continue
			}
			pool = append(pool, candidate{corridorID: id, coords: line})
		}
	}
	if len(pool) == 0 {
		return nil
	}

	path := &StitchedPath{}
	cursor := anchor
	used := make([]bool, len(pool))

	for remaining := len(pool); remaining > 0; remaining-- {
		best := -1
		bestDist := 0.0
		bestReversed := false

		for i, c := range pool {
			if used[i] {
				continue
			}
			head := sqDist(cursor, c.coords[0])
			tail := sqDist(cursor, c.coords[len(c.coords)-1])

			d, reversed := head, false
			if tail < head {
				d, reversed = tail, true
			}
			if best == -1 || d < bestDist {
				best, bestDist, bestReversed = i, d, reversed
			}
		}

		c := pool[best]
		used[best] = true

		coords := c.coords
		if bestReversed {
			coords = reverse(coords)
		}
		if len(path.Coordinates) > 0 && sqDist(path.Coordinates[len(path.Coordinates)-1], coords[0]) < junctionEpsilon {
			coords = coords[1:]
		}
		path.Coordinates = append(path.Coordinates, coords...)
		path.Segments = append(path.Segments, Segment{
			CorridorID: c.corridorID,
			LengthKm:   geo.PathLengthKm(c.coords),
		})
		cursor = path.Coordinates[len(path.Coordinates)-1]
	}

	return path
}

func sqDist(a, b [2]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return dx*dx + dy*dy
}

func reverse(coords [][2]float64) [][2]float64 {
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		out[len(coords)-1-i] = c
	}
	return out
}
