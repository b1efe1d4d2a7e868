package traffic

import (
	"testing"
	"time"
)

func TestSpeedToState(t *testing.T) {
	cases := []struct {
		speed float64
		want  State
	}{
		{10, StateRed},
		{29.9, StateRed},
		{30, StateYellow},
		{49.9, StateYellow},
		{50, StateGreen},
		{70, StateGreen},
	}
	for _, c := range cases {
		if got := SpeedToState(c.speed); got != c.want {
			t.Fatalf("SpeedToState(%v) = %v, want %v", c.speed, got, c.want)
		}
	}
}

func TestCacheUpdateAndLookup(t *testing.T) {
	cache := NewCache()

	if _, ok := cache.Lookup("778"); ok {
		t.Fatalf("expected no data before update")
	}

	cache.Update("778", StateGreen, 55)
	s, ok := cache.Lookup("778")
	if !ok || s.SpeedKmh != 55 || s.State != StateGreen {
		t.Fatalf("unexpected sample: %+v", s)
	}
	if s.LastUpdated.IsZero() {
		t.Fatalf("expected update timestamp")
	}
}

func TestCacheOverwritesInPlace(t *testing.T) {
	cache := NewCache()

	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return base }
	cache.Update("778", StateGreen, 55)

	cache.now = func() time.Time { return base.Add(time.Minute) }
	cache.Update("778", StateRed, 20)

	s, _ := cache.Lookup("778")
	if s.State != StateRed || s.SpeedKmh != 20 {
		t.Fatalf("expected overwrite, got %+v", s)
	}
	if !s.LastUpdated.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected refreshed timestamp, got %v", s.LastUpdated)
	}
	if len(cache.Snapshot()) != 1 {
		t.Fatalf("expected one entry")
	}
}
