package corridor

import (
	"encoding/json"
	"testing"
)

type fakeSource map[string]Geometry

func (f fakeSource) Geometry(id string) (Geometry, bool) {
	g, ok := f[id]
	return g, ok
}

func lineString(t *testing.T, coords [][2]float64) Geometry {
	t.Helper()
	raw, err := json.Marshal(coords)
	if err != nil {
		t.Fatalf("marshal coords: %v", err)
	}
	return Geometry{Type: "LineString", Coordinates: raw}
}

func multiLineString(t *testing.T, parts [][][2]float64) Geometry {
	t.Helper()
	raw, err := json.Marshal(parts)
	if err != nil {
		t.Fatalf("marshal coords: %v", err)
	}
	return Geometry{Type: "MultiLineString", Coordinates: raw}
}

func TestStitchJoinsSegmentsAndDropsDuplicateJunction(t *testing.T) {
	src := fakeSource{
		"a": lineString(t, [][2]float64{{0, 0}, {1, 0}}),
		"b": lineString(t, [][2]float64{{1, 0}, {2, 0}}),
	}

	path := Stitch(src, []string{"a", "b"}, [2]float64{0, 0})
	if path == nil {
		t.Fatalf("expected path")
	}
	want := [][2]float64{{0, 0}, {1, 0}, {2, 0}}
	if len(path.Coordinates) != len(want) {
		t.Fatalf("unexpected coordinates: %v", path.Coordinates)
	}
	for i, c := range want {
		if path.Coordinates[i] != c {
			t.Fatalf("coordinate %d: got %v want %v", i, path.Coordinates[i], c)
		}
	}
	if path.SegmentCount() != 2 {
		t.Fatalf("expected 2 segments, got %d", path.SegmentCount())
	}
}

func TestStitchReversesSegmentToMatchCursor(t *testing.T) {
	// b is stored site-to-plant; the stitcher must flip it.
	src := fakeSource{
		"a": lineString(t, [][2]float64{{0, 0}, {1, 0}}),
		"b": lineString(t, [][2]float64{{2, 0}, {1, 0}}),
	}

	path := Stitch(src, []string{"a", "b"}, [2]float64{0, 0})
	if path == nil {
		t.Fatalf("expected path")
	}
	last := path.Coordinates[len(path.Coordinates)-1]
	if last != ([2]float64{2, 0}) {
		t.Fatalf("expected reversed segment to end at (2,0), got %v", last)
	}
	if len(path.Coordinates) != 3 {
		t.Fatalf("expected junction dedup, got %v", path.Coordinates)
	}
}

func TestStitchPicksNearestSegmentFirst(t *testing.T) {
	src := fakeSource{
		"far":  lineString(t, [][2]float64{{5, 0}, {6, 0}}),
		"near": lineString(t, [][2]float64{{0.1, 0}, {1, 0}}),
	}

	path := Stitch(src, []string{"far", "near"}, [2]float64{0, 0})
	if path.Segments[0].CorridorID != "near" {
		t.Fatalf("expected nearest segment first, got %v", path.Segments)
	}
}

func TestStitchFlattensMultiLineString(t *testing.T) {
	src := fakeSource{
		"m": multiLineString(t, [][][2]float64{
			{{0, 0}, {1, 0}},
			{{1, 0}, {2, 0}},
		}),
	}

	path := Stitch(src, []string{"m"}, [2]float64{0, 0})
	if path == nil || path.SegmentCount() != 2 {
		t.Fatalf("expected both parts stitched: %+v", path)
	}
	if len(path.Coordinates) != 3 {
		t.Fatalf("expected dedup across parts: %v", path.Coordinates)
	}
}

func TestStitchSkipsUnusableCorridors(t *testing.T) {
	src := fakeSource{
		"short": lineString(t, [][2]float64{{0, 0}}),
		"ok":    lineString(t, [][2]float64{{0, 0}, {1, 0}}),
	}

	path := Stitch(src, []string{"missing", "short", "ok"}, [2]float64{0, 0})
	if path == nil || path.SegmentCount() != 1 {
		t.Fatalf("expected single usable segment: %+v", path)
	}

	if Stitch(src, []string{"missing", "short"}, [2]float64{0, 0}) != nil {
		t.Fatalf("expected nil when nothing usable")
	}
}

func TestStitchSingleSegmentIsTrivialPath(t *testing.T) {
	src := fakeSource{"a": lineString(t, [][2]float64{{0, 0}, {1, 1}})}
	path := Stitch(src, []string{"a"}, [2]float64{0, 0})
	if path == nil || path.SegmentCount() != 1 || len(path.Coordinates) != 2 {
		t.Fatalf("unexpected trivial path: %+v", path)
	}
	if path.TotalLengthKm() <= 0 {
		t.Fatalf("expected positive length")
	}
}

func TestStitchDuplicateIDsProcessedIndependently(t *testing.T) {
	src := fakeSource{"a": lineString(t, [][2]float64{{0, 0}, {1, 0}})}
	path := Stitch(src, []string{"a", "a"}, [2]float64{0, 0})
	if path.SegmentCount() != 2 {
		t.Fatalf("expected duplicate id stitched twice, got %d", path.SegmentCount())
	}
}
