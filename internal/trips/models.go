package trips

import "time"

const (
	StatusInProgress = "in_progress"
	StatusArrived    = "arrived"
	StatusCancelled  = "cancelled"
)

type Trip struct {
	ID              string     `json:"id"`
	VehicleID       string     `json:"vehicle_id"`
	ActualStartAt   time.Time  `json:"actual_start_at"`
	ActualArrivalAt *time.Time `json:"actual_arrival_at,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DeliveryTarget is today's pour plan for the site.
type DeliveryTarget struct {
	TargetVolumeM3 float64   `json:"target_volume_m3"`
	VolumePerTruck float64   `json:"volume_per_truck_m3"`
	TrucksPerHour  float64   `json:"trucks_per_hour"`
	WorkStart      time.Time `json:"work_start"`
	WorkEnd        time.Time `json:"work_end"`
}
