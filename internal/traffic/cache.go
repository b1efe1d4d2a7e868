package traffic

import (
	"sync"
	"time"
)

type State string

const (
	StateGreen  State = "GREEN"
	StateYellow State = "YELLOW"
	StateRed    State = "RED"
)

// Saturation thresholds in km/h.
const (
	redBelowKmh    = 30.0
	yellowBelowKmh = 50.0
)

// SpeedToState classifies a corridor speed into a saturation level.
func SpeedToState(speedKmh float64) State {
	switch {
	case speedKmh < redBelowKmh:
		return StateRed
	case speedKmh < yellowBelowKmh:
		return StateYellow
	default:
		return StateGreen
	}
}

type Sample struct {
	CorridorID  string    `json:"corridor_id"`
	State       State     `json:"state"`
	SpeedKmh    float64   `json:"speed_kmh"`
	LastUpdated time.Time `json:"last_updated"`
}

// Cache holds the latest traffic sample per corridor. Samples are never
// evicted; a stale sample stays authoritative until the next fetch
// overwrites it.
type Cache struct {
	mu      sync.RWMutex
	samples map[string]Sample
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		samples: map[string]Sample{},
		now:     time.Now,
	}
}

// Update creates or overwrites the sample for a corridor in place.
func (c *Cache) Update(corridorID string, state State, speedKmh float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samples[corridorID] = Sample{
		CorridorID:  corridorID,
		State:       state,
		SpeedKmh:    speedKmh,
		LastUpdated: c.now(),
	}
}

// Lookup returns the current sample for a corridor, if any.
func (c *Cache) Lookup(corridorID string) (Sample, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.samples[corridorID]
	return s, ok
}

// Snapshot returns a copy of every cached sample.
func (c *Cache) Snapshot() []Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Sample, 0, len(c.samples))
	for _, s := range c.samples {
		out = append(out, s)
	}
	return out
}
