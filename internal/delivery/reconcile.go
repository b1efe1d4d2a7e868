package delivery

import (
	"fmt"
	"math"
	"time"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/shared/geo"
	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/trips"
)

// HydrateFromTrips mirrors every in-progress trip record as a truck.
// Repeated calls update rather than duplicate: an existing truck only ever
// has its progress raised, and a trip whose truck is already archived is
// skipped, never resurrected. Trips reaching full progress are archived
// through the DB completion path immediately.
func (s *Session) HydrateFromTrips(list []trips.Trip, defaultSpeedKmh float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		return
	}

	now := s.now()
	for _, trip := range list {
		if trip.Status != trips.StatusInProgress {
			continue
		}
		if _, done := s.completedTrips[trip.ID]; done {
			// already archived; a stale in-progress row must not resurrect it
			continue
		}

		truckID, mapped := s.tripToTruck[trip.ID]
		if mapped {
			truck, alive := s.trucks[truckID]
			if !alive {
				// already archived or reset; drop the mapping and tombstone
				// the trip so the row cannot recreate the truck later
				delete(s.tripToTruck, trip.ID)
				s.completedTrips[trip.ID] = struct{}{}
				continue
			}
			s.advanceFromTripLocked(truck, trip, defaultSpeedKmh, now)
			continue
		}

		s.addTruckFromTripLocked(trip, defaultSpeedKmh, now)
	}
}

// AddTruckFromTrip registers a single trip as a DB-backed truck. No-op when
// the trip is already tracked or no session is active.
func (s *Session) AddTruckFromTrip(trip trips.Trip, defaultSpeedKmh float64) *Truck {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		return nil
	}
	if _, mapped := s.tripToTruck[trip.ID]; mapped {
		return nil
	}
	if _, done := s.completedTrips[trip.ID]; done {
		return nil
	}
	return s.addTruckFromTripLocked(trip, defaultSpeedKmh, s.now())
}

func (s *Session) addTruckFromTripLocked(trip trips.Trip, defaultSpeedKmh float64, now time.Time) *Truck {
	path, ok := s.paths[s.cfg.PathID]
	if !ok || path == nil {
		return nil
	}

	totalKm := path.TotalLengthKm()
	speed := math.Min(defaultSpeedKmh, s.cfg.MaxMixerKmh)
	if speed <= 0 {
		speed = s.cfg.MaxMixerKmh
	}

	truck := &Truck{
		ID:               fmt.Sprintf("truck-%03d", s.truckSeq),
		TruckNumber:      s.truckSeq,
		PathID:           s.cfg.PathID,
		TripID:           trip.ID,
		Status:           StatusEnRoute,
		DepartureTime:    trip.ActualStartAt,
		TotalDistanceKm:  totalKm,
		CurrentSpeedKmh:  speed,
		ConcreteVolumeM3: s.cfg.VolumePerTruckM3,
		Position:         path.Coordinates[0],
	}
	truck.EstimatedArrival = etaFrom(trip.ActualStartAt, totalKm, speed)

	s.trucks[truck.ID] = truck
	s.tripToTruck[trip.ID] = truck.ID
	s.truckSeq++

	s.advanceFromTripLocked(truck, trip, defaultSpeedKmh, now)
	return truck
}

// advanceFromTripLocked raises a DB-backed truck's progress to what the trip
// record implies at this instant. Progress never regresses.
func (s *Session) advanceFromTripLocked(truck *Truck, trip trips.Trip, defaultSpeedKmh float64, now time.Time) {
	path, ok := s.paths[truck.PathID]
	if !ok || path == nil {
		return
	}

	speed := math.Min(defaultSpeedKmh, s.cfg.MaxMixerKmh)
	elapsed := now.Sub(trip.ActualStartAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	ratio := truck.ProgressRatio
	if truck.TotalDistanceKm <= 0 {
		ratio = 1
	} else if speed > 0 {
		travelSeconds := truck.TotalDistanceKm / speed * 3600
		ratio = math.Min(elapsed/travelSeconds, 1)
	}

	if ratio > truck.ProgressRatio {
		truck.ProgressRatio = ratio
	}
	if truck.ElapsedSeconds < elapsed {
		truck.ElapsedSeconds = elapsed
	}
	truck.Position = geo.PointAlongPath(path.Coordinates, truck.ProgressRatio)

	if truck.ProgressRatio >= 1 {
		s.completeFromDBLocked(trip.ID, now)
	}
}

// CompleteTruckFromDB archives the truck backing a trip and removes it from
// the active map, so the next hydration cycle does not reprocess it.
func (s *Session) CompleteTruckFromDB(tripID string, arrivalAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg == nil {
		return
	}
	if arrivalAt.IsZero() {
		arrivalAt = s.now()
	}
	s.completeFromDBLocked(tripID, arrivalAt)
}

func (s *Session) completeFromDBLocked(tripID string, arrivalAt time.Time) {
	truckID, mapped := s.tripToTruck[tripID]
	if !mapped {
		return
	}
	truck, alive := s.trucks[truckID]
	if alive {
		s.completeLocked(truck, arrivalAt)
		delete(s.trucks, truckID)
	}
	delete(s.tripToTruck, tripID)
	s.completedTrips[tripID] = struct{}{}
}

// PruneInactiveTrips drops every DB-backed truck whose trip id is not in the
// currently in-progress set. Handles trips corrected or cancelled out-of-band.
func (s *Session) PruneInactiveTrips(activeTripIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make(map[string]struct{}, len(activeTripIDs))
	for _, id := range activeTripIDs {
		active[id] = struct{}{}
	}

	for tripID, truckID := range s.tripToTruck {
		if _, ok := active[tripID]; ok {
			continue
		}
		delete(s.trucks, truckID)
		delete(s.tripToTruck, tripID)
	}
}
