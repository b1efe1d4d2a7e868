package delivery

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/corridor"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/shared/geo"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/stream"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/traffic"
)

// fleetChannel is the stream hub channel snapshots are broadcast on.
const fleetChannel = "fleet"

// Session owns the truck fleet for one delivery run. The tick loop and the
// DB reconciler both mutate it, so every operation takes the mutex.
type Session struct {
	mu      sync.Mutex
	traffic *traffic.Cache
	hub     *stream.Hub
	now     func() time.Time

	cfg     *Config
	stopped bool
	paths   map[string]*corridor.StitchedPath

	trucks         map[string]*Truck
	records        []Record
	tripToTruck    map[string]string
	completedTrips map[string]struct{}

	truckSeq          int
	dispatched        int
	totalTrucksNeeded int
	dispatchInterval  time.Duration
	nextDispatchAt    time.Time
}

func NewSession(cache *traffic.Cache, hub *stream.Hub) *Session {
	return &Session{
		traffic:        cache,
		hub:            hub,
		now:            time.Now,
		trucks:         map[string]*Truck{},
		tripToTruck:    map[string]string{},
		completedTrips: map[string]struct{}{},
	}
}

// Start begins a new delivery session, replacing any previous one. Paths are
// the freshly stitched plant-to-site geometries for this run; cfg.PathID
// selects the one dispatch uses.
func (s *Session) Start(cfg Config, paths map[string]*corridor.StitchedPath) (*StartSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.VolumePerTruckM3 <= 0 || cfg.TrucksPerHour <= 0 || cfg.TargetVolumeM3 <= 0 {
		return nil, errors.New("target volume, volume per truck and trucks per hour must be positive")
	}
	path, ok := paths[cfg.PathID]
	if !ok || path == nil {
		return nil, fmt.Errorf("no geometry for path %q", cfg.PathID)
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = s.now()
	}
	if cfg.DefaultSpeedKmh <= 0 {
		cfg.DefaultSpeedKmh = 40
	}
	if cfg.MaxMixerKmh <= 0 {
		cfg.MaxMixerKmh = 60
	}

	s.cfg = &cfg
	s.stopped = false
	s.paths = paths
	s.trucks = map[string]*Truck{}
	s.records = nil
	s.tripToTruck = map[string]string{}
	s.completedTrips = map[string]struct{}{}
	s.truckSeq = 1
	s.dispatched = 0
	s.totalTrucksNeeded = int(math.Ceil(cfg.TargetVolumeM3 / cfg.VolumePerTruckM3))
	s.dispatchInterval = time.Duration(60/cfg.TrucksPerHour*60) * time.Second
	s.nextDispatchAt = cfg.StartTime

	s.dispatchLocked(cfg.PathID)

	baselineKmh := math.Min(cfg.DefaultSpeedKmh, cfg.MaxMixerKmh)
	return &StartSummary{
		Message:           fmt.Sprintf("delivery session started on path %s", cfg.PathID),
		TotalTrucksNeeded: s.totalTrucksNeeded,
		IntervalMinutes:   60 / cfg.TrucksPerHour,
		TotalDistanceKm:   path.TotalLengthKm(),
		SegmentCount:      path.SegmentCount(),
		BaselineTravel:    geo.FormatDuration(path.TotalLengthKm() / baselineKmh * 3600),
	}, nil
}

// Dispatch creates the next scheduled truck on a path. It is a no-op past
// the session cap, with no config, or for an unknown path.
func (s *Session) Dispatch(pathID string) *Truck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(pathID)
}

func (s *Session) dispatchLocked(pathID string) *Truck {
	if s.cfg == nil || s.stopped {
		return nil
	}
	path, ok := s.paths[pathID]
	if !ok || path == nil {
		return nil
	}
	if s.dispatched >= s.totalTrucksNeeded {
		return nil
	}

	now := s.now()
	totalKm := path.TotalLengthKm()
	speed := pathAverageSpeedKmh(s.traffic, path, s.cfg.DefaultSpeedKmh, s.cfg.MaxMixerKmh)

	truck := &Truck{
		ID:               fmt.Sprintf("truck-%03d", s.truckSeq),
		TruckNumber:      s.truckSeq,
		PathID:           pathID,
		Status:           StatusEnRoute,
		Position:         path.Coordinates[0],
		DepartureTime:    now,
		EstimatedArrival: etaFrom(now, totalKm, speed),
		TotalDistanceKm:  totalKm,
		CurrentSpeedKmh:  speed,
		ConcreteVolumeM3: s.cfg.VolumePerTruckM3,
	}

	s.trucks[truck.ID] = truck
	s.truckSeq++
	s.dispatched++
	s.nextDispatchAt = s.nextDispatchAt.Add(s.dispatchInterval)
	return truck
}

// Tick advances every en-route truck by dt seconds, refreshing speed from
// the traffic cache and re-projecting ETAs. Progress never regresses.
func (s *Session) Tick(dtSeconds float64) {
	s.mu.Lock()

	if s.cfg == nil || s.stopped {
		s.mu.Unlock()
		return
	}

	now := s.now()
	if s.cfg.AutoDispatch && !s.nextDispatchAt.IsZero() && !now.Before(s.nextDispatchAt) {
		s.dispatchLocked(s.cfg.PathID)
	}

	for _, truck := range s.trucks {
		if truck.Status != StatusEnRoute {
			continue
		}
		path, ok := s.paths[truck.PathID]
		if !ok || path == nil {
			continue
		}

		truck.ElapsedSeconds += dtSeconds
		truck.CurrentSpeedKmh = pathAverageSpeedKmh(s.traffic, path, s.cfg.DefaultSpeedKmh, s.cfg.MaxMixerKmh)

		if truck.TotalDistanceKm > 0 {
			covered := truck.CurrentSpeedKmh * truck.ElapsedSeconds / 3600
			ratio := math.Min(covered/truck.TotalDistanceKm, 1)
			if ratio > truck.ProgressRatio {
				truck.ProgressRatio = ratio
			}
		} else {
			truck.ProgressRatio = 1
		}

		truck.Position = geo.PointAlongPath(path.Coordinates, truck.ProgressRatio)

		if truck.CurrentSpeedKmh > 0 {
			remainingKm := truck.TotalDistanceKm * (1 - truck.ProgressRatio)
			truck.EstimatedArrival = now.Add(time.Duration(remainingKm / truck.CurrentSpeedKmh * float64(time.Hour)))
		}

		if truck.ProgressRatio >= 1 {
			if truck.TripID != "" {
				s.completeFromDBLocked(truck.TripID, now)
			} else {
				s.completeLocked(truck, now)
			}
		}
	}

	payload := s.snapshotLocked(now)
	s.mu.Unlock()

	// publish outside the mutex so a slow subscriber or redis round trip
	// cannot stall the next tick
	if payload != nil {
		s.hub.Broadcast(fleetChannel, payload)
	}
}

// completeLocked archives an arrival. Synthetic trucks stay queryable in the
// active map; DB-backed completion deletes afterwards (see completeFromDBLocked).
func (s *Session) completeLocked(truck *Truck, now time.Time) {
	if truck.Status == StatusArrived {
		return
	}

	truck.Status = StatusArrived
	truck.ProgressRatio = 1
	arrival := now
	truck.ArrivalTime = &arrival
	truck.EstimatedArrival = now
	if path, ok := s.paths[truck.PathID]; ok && path != nil && len(path.Coordinates) > 0 {
		truck.Position = path.Coordinates[len(path.Coordinates)-1]
	}

	hourWindow := int(math.Floor(now.Sub(s.cfg.StartTime).Hours()))
	if hourWindow < 0 {
		hourWindow = 0
	}

	cumulative := truck.ConcreteVolumeM3
	if n := len(s.records); n > 0 {
		cumulative += s.records[n-1].CumulativeVolumeM3
	}

	s.records = append(s.records, Record{
		TruckID:            truck.ID,
		TruckNumber:        truck.TruckNumber,
		DepartureTime:      truck.DepartureTime,
		ArrivalTime:        now,
		TravelTimeSeconds:  now.Sub(truck.DepartureTime).Seconds(),
		ConcreteVolumeM3:   truck.ConcreteVolumeM3,
		CumulativeVolumeM3: cumulative,
		HourWindow:         hourWindow,
	})
}

// Stop freezes the session: no more dispatches or ticks, state stays
// queryable. Reset destroys it.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = nil
	s.stopped = false
	s.paths = nil
	s.trucks = map[string]*Truck{}
	s.records = nil
	s.tripToTruck = map[string]string{}
	s.completedTrips = map[string]struct{}{}
	s.truckSeq = 0
	s.dispatched = 0
	s.totalTrucksNeeded = 0
	s.nextDispatchAt = time.Time{}
}

// Trucks returns a snapshot of the active fleet, ordered by truck number.
func (s *Session) Trucks() []Truck {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trucksLocked()
}

func (s *Session) trucksLocked() []Truck {
	out := make([]Truck, 0, len(s.trucks))
	for _, t := range s.trucks {
		out = append(out, *t)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].TruckNumber < out[j-1].TruckNumber; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func (s *Session) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Throughput computes planned-vs-actual arrival analytics at this instant.
// Nil when no session is active.
func (s *Session) Throughput() *Throughput {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return nil
	}
	return s.throughputLocked(s.now())
}

func (s *Session) throughputLocked(now time.Time) *Throughput {
	elapsedHours := now.Sub(s.cfg.StartTime).Hours()
	if elapsedHours < 0 {
		elapsedHours = 0
	}

	rate := s.cfg.TrucksPerHour
	expected := math.Min(rate*elapsedHours, float64(s.totalTrucksNeeded))
	completed := len(s.records)

	actualByWindow := map[int]int{}
	for _, r := range s.records {
		actualByWindow[r.HourWindow]++
	}

	var windows []WindowStat
	currentHour := int(math.Floor(elapsedHours))
	for h := 0; h <= currentHour; h++ {
		target := rate
		if h == currentHour {
			target = rate * (elapsedHours - float64(currentHour))
		}
		windows = append(windows, WindowStat{
			Hour:   h,
			Target: target,
			Actual: actualByWindow[h],
			Diff:   float64(actualByWindow[h]) - target,
		})
	}

	actualRate := 0.0
	if elapsedHours > 0 {
		actualRate = float64(completed) / elapsedHours
	}

	tp := &Throughput{
		ElapsedHours:   elapsedHours,
		ExpectedByNow:  expected,
		Completed:      completed,
		ActualPerHour:  actualRate,
		BehindSchedule: expected > float64(completed),
		Windows:        windows,
	}

	remaining := s.totalTrucksNeeded - completed
	if remaining > 0 && actualRate > 0 {
		baselineHours := 0.0
		if path, ok := s.paths[s.cfg.PathID]; ok && path != nil {
			speed := math.Min(s.cfg.DefaultSpeedKmh, s.cfg.MaxMixerKmh)
			if speed > 0 {
				baselineHours = path.TotalLengthKm() / speed
			}
		}
		projected := float64(remaining) / actualRate
		planned := float64(remaining)/rate + baselineHours
		if delay := (projected - planned) * 60; delay > 0 {
			tp.ProjectedDelayMinutes = delay
		}
	}

	return tp
}

// Status aggregates the whole session view. Nil when no session is active.
func (s *Session) Status() *SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		return nil
	}

	now := s.now()
	enRoute := 0
	for _, t := range s.trucks {
		if t.Status == StatusEnRoute {
			enRoute++
		}
	}
	completed := len(s.records)
	waiting := s.totalTrucksNeeded - completed - enRoute
	if waiting < 0 {
		waiting = 0
	}

	delivered := 0.0
	if completed > 0 {
		delivered = s.records[completed-1].CumulativeVolumeM3
	}

	tp := s.throughputLocked(now)

	status := &SessionStatus{
		Config:            *s.cfg,
		Stopped:           s.stopped,
		Now:               now,
		TotalTrucksNeeded: s.totalTrucksNeeded,
		Dispatched:        s.dispatched,
		TrucksEnRoute:     enRoute,
		TrucksCompleted:   completed,
		TrucksWaiting:     waiting,
		DeliveredVolumeM3: delivered,
		Throughput:        tp,
		Trucks:            s.trucksLocked(),
		Records:           append([]Record(nil), s.records...),
	}

	if remaining := s.totalTrucksNeeded - completed; remaining > 0 && tp.ActualPerHour > 0 {
		eta := now.Add(time.Duration(float64(remaining) / tp.ActualPerHour * float64(time.Hour)))
		status.EstimatedCompletion = &eta
	}

	return status
}

// snapshotLocked marshals the fleet view for the stream hub. Nil when no hub
// is attached; the publish itself happens after the mutex is released.
func (s *Session) snapshotLocked(now time.Time) []byte {
	if s.hub == nil {
		return nil
	}
	payload, err := json.Marshal(struct {
		Time   time.Time `json:"time"`
		Trucks []Truck   `json:"trucks"`
	}{Time: now, Trucks: s.trucksLocked()})
	if err != nil {
		return nil
	}
	return payload
}

func etaFrom(now time.Time, distanceKm, speedKmh float64) time.Time {
	if speedKmh <= 0 {
		return now
	}
	return now.Add(time.Duration(distanceKm / speedKmh * float64(time.Hour)))
}
