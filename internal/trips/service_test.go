package trips

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
)

var errTrips = errors.New("trips error")

func TestInsertAndCompleteTrip(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	start := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO truck_trips`).
		WithArgs(pgxmock.AnyArg(), "KX-1234", start, StatusInProgress).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	trip, err := svc.InsertTrip(context.Background(), "KX-1234", start)
	if err != nil {
		t.Fatalf("insert trip: %v", err)
	}
	if trip.ID == "" || trip.Status != StatusInProgress {
		t.Fatalf("unexpected trip: %+v", trip)
	}

	arrival := start.Add(45 * time.Minute)
	mock.ExpectExec(`UPDATE truck_trips`).
		WithArgs(trip.ID, arrival, StatusArrived).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := svc.CompleteTrip(context.Background(), trip.ID, arrival); err != nil {
		t.Fatalf("complete trip: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListTodayTrips(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)

	start := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	arrival := start.Add(40 * time.Minute)
	mock.ExpectQuery(`SELECT id, vehicle_id, actual_start_at, actual_arrival_at, status, created_at`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "vehicle_id", "actual_start_at", "actual_arrival_at", "status", "created_at"}).
			AddRow("trip-1", "KX-1234", start, (*time.Time)(nil), StatusInProgress, start).
			AddRow("trip-2", "KX-5678", start.Add(-time.Hour), &arrival, StatusArrived, start))

	list, err := svc.ListTodayTrips(context.Background())
	if err != nil {
		t.Fatalf("list trips: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(list))
	}
	if list[0].ActualArrivalAt != nil {
		t.Fatalf("expected nil arrival for in-progress trip")
	}
	if list[1].ActualArrivalAt == nil || !list[1].ActualArrivalAt.Equal(arrival) {
		t.Fatalf("expected arrival for finished trip")
	}
}

func TestListTodayTripsQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, vehicle_id`).WillReturnError(errTrips)

	svc := NewService(mock)
	if _, err := svc.ListTodayTrips(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestInsertTripError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO truck_trips`).
		WithArgs(pgxmock.AnyArg(), "KX-1234", pgxmock.AnyArg(), StatusInProgress).
		WillReturnError(errTrips)

	svc := NewService(mock)
	if _, err := svc.InsertTrip(context.Background(), "KX-1234", time.Time{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestTodayTargetFallsBackToDefaults(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT target_volume_m3`).WillReturnError(errTrips)

	svc := NewService(mock)
	target, err := svc.TodayTarget(context.Background())
	if err != nil {
		t.Fatalf("today target: %v", err)
	}
	if target.TargetVolumeM3 <= 0 || target.TrucksPerHour <= 0 {
		t.Fatalf("expected default target, got %+v", target)
	}
}

func TestTodayTargetFromRow(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT target_volume_m3`).
		WillReturnRows(pgxmock.NewRows([]string{"target", "per_truck", "per_hour", "start", "end"}).
			AddRow(150.0, 7.5, 5.0, start, start.Add(9*time.Hour)))

	svc := NewService(mock)
	target, err := svc.TodayTarget(context.Background())
	if err != nil {
		t.Fatalf("today target: %v", err)
	}
	if target.TargetVolumeM3 != 150 || target.TrucksPerHour != 5 {
		t.Fatalf("unexpected target: %+v", target)
	}
}
