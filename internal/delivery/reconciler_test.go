package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/trips"
)

type fakeTripSource struct {
	trips []trips.Trip
	err   error
}

func (f *fakeTripSource) ListTodayTrips(_ context.Context) ([]trips.Trip, error) {
	return f.trips, f.err
}

func TestSyncOnceHydratesCompletesAndPrunes(t *testing.T) {
	path := straightPath(t, 10)
	s := startSession(t, testConfig(), path)
	baseline := len(s.Trucks())

	source := &fakeTripSource{trips: []trips.Trip{
		inProgressTrip("trip-1", time.Minute),
		inProgressTrip("trip-2", time.Minute),
	}}
	r := NewReconciler(s, source, 40)

	if err := r.SyncOnce(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(s.Trucks()) != baseline+2 {
		t.Fatalf("expected two hydrated trucks, got %d", len(s.Trucks())-baseline)
	}

	// trip-1 arrives, trip-2 disappears from the store entirely
	arrival := sessionStart.Add(20 * time.Minute)
	source.trips = []trips.Trip{{
		ID:              "trip-1",
		ActualStartAt:   sessionStart.Add(-time.Minute),
		ActualArrivalAt: &arrival,
		Status:          trips.StatusArrived,
	}}

	if err := r.SyncOnce(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(s.Trucks()) != baseline {
		t.Fatalf("expected db-backed trucks reconciled away, got %d", len(s.Trucks()))
	}
	records := s.Records()
	if len(records) != 1 || !records[0].ArrivalTime.Equal(arrival) {
		t.Fatalf("expected arrival archived from db, got %+v", records)
	}
}

func TestSyncOnceSourceError(t *testing.T) {
	path := straightPath(t, 10)
	s := startSession(t, testConfig(), path)

	r := NewReconciler(s, &fakeTripSource{err: errors.New("db down")}, 40)
	if err := r.SyncOnce(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if len(s.Trucks()) != 1 {
		t.Fatalf("failed sync must not change state")
	}
}

func TestReconcilerRunStopsOnCancel(t *testing.T) {
	path := straightPath(t, 10)
	s := startSession(t, testConfig(), path)

	source := &fakeTripSource{trips: []trips.Trip{inProgressTrip("trip-1", time.Minute)}}
	r := NewReconciler(s, source, 40)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(time.Second)
	for len(s.Trucks()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("reconciler never synced")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("run did not stop on cancel")
	}
}
