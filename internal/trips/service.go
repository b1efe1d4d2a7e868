package trips

import (
	"context"
	"time"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// ListTodayTrips returns all trips that started today, oldest first.
func (s *Service) ListTodayTrips(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, vehicle_id, actual_start_at, actual_arrival_at, status, created_at
		FROM truck_trips
		WHERE actual_start_at::date = CURRENT_DATE
		ORDER BY actual_start_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []Trip
	for rows.Next() {
		var t Trip
		if err := rows.Scan(&t.ID, &t.VehicleID, &t.ActualStartAt, &t.ActualArrivalAt, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	return trips, nil
}

func (s *Service) InsertTrip(ctx context.Context, vehicleID string, startAt time.Time) (Trip, error) {
	if startAt.IsZero() {
		startAt = time.Now()
	}
	trip := Trip{
		ID:            uuid.NewString(),
		VehicleID:     vehicleID,
		ActualStartAt: startAt,
		Status:        StatusInProgress,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO truck_trips (id, vehicle_id, actual_start_at, status)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, trip.ID, trip.VehicleID, trip.ActualStartAt, trip.Status)
	if err := row.Scan(&trip.CreatedAt); err != nil {
		return Trip{}, err
	}
	return trip, nil
}

func (s *Service) CompleteTrip(ctx context.Context, id string, arrivalAt time.Time) error {
	if arrivalAt.IsZero() {
		arrivalAt = time.Now()
	}
	_, err := s.db.Exec(ctx, `
		UPDATE truck_trips
		SET actual_arrival_at=$2, status=$3
		WHERE id=$1
	`, id, arrivalAt, StatusArrived)
	return err
}

// TodayTarget loads today's pour plan. A missing row falls back to defaults
// so a session can still start on an unconfigured day.
func (s *Service) TodayTarget(ctx context.Context) (DeliveryTarget, error) {
	row := s.db.QueryRow(ctx, `
		SELECT target_volume_m3, volume_per_truck_m3, trucks_per_hour, work_start, work_end
		FROM delivery_targets
		WHERE plan_date = CURRENT_DATE
	`)
	var target DeliveryTarget
	if err := row.Scan(&target.TargetVolumeM3, &target.VolumePerTruck, &target.TrucksPerHour, &target.WorkStart, &target.WorkEnd); err != nil {
		return defaultTarget(), nil
	}
	return target, nil
}

func defaultTarget() DeliveryTarget {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, now.Location())
	return DeliveryTarget{
		TargetVolumeM3: 120,
		VolumePerTruck: 7,
		TrucksPerHour:  4,
		WorkStart:      start,
		WorkEnd:        start.Add(10 * time.Hour),
	}
}
