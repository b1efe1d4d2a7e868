package delivery

import (
	"time"
)

type TruckStatus string

const (
	StatusEnRoute TruckStatus = "en_route"
	StatusArrived TruckStatus = "arrived"
	// StatusWaiting is reserved for a pre-dispatch queued state. Nothing
	// produces it yet; waiting counts are derived in Status().
	StatusWaiting TruckStatus = "waiting"
)

// Truck is the central mutable entity of a delivery session. Synthetic
// trucks are created by Dispatch, DB-backed trucks by trip hydration
// (TripID non-empty).
type Truck struct {
	ID               string       `json:"id"`
	TruckNumber      int          `json:"truck_number"`
	PathID           string       `json:"path_id"`
	TripID           string       `json:"trip_id,omitempty"`
	Status           TruckStatus  `json:"status"`
	Position         [2]float64   `json:"position"`
	ProgressRatio    float64      `json:"progress_ratio"`
	DepartureTime    time.Time    `json:"departure_time"`
	ArrivalTime      *time.Time   `json:"arrival_time,omitempty"`
	EstimatedArrival time.Time    `json:"estimated_arrival"`
	ElapsedSeconds   float64      `json:"elapsed_seconds"`
	TotalDistanceKm  float64      `json:"total_distance_km"`
	CurrentSpeedKmh  float64      `json:"current_speed_kmh"`
	ConcreteVolumeM3 float64      `json:"concrete_volume_m3"`
}

// Config is fixed for the lifetime of a session.
type Config struct {
	PathID           string    `json:"path_id"`
	TargetVolumeM3   float64   `json:"target_volume_m3"`
	VolumePerTruckM3 float64   `json:"volume_per_truck_m3"`
	TrucksPerHour    float64   `json:"trucks_per_hour"`
	StartTime        time.Time `json:"start_time"`
	DefaultSpeedKmh  float64   `json:"default_speed_kmh"`
	MaxMixerKmh      float64   `json:"max_mixer_kmh"`
	AutoDispatch     bool      `json:"auto_dispatch"`
}

// Record is an append-only delivery log entry created when a truck arrives.
type Record struct {
	TruckID            string    `json:"truck_id"`
	TruckNumber        int       `json:"truck_number"`
	DepartureTime      time.Time `json:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time"`
	TravelTimeSeconds  float64   `json:"travel_time_seconds"`
	ConcreteVolumeM3   float64   `json:"concrete_volume_m3"`
	CumulativeVolumeM3 float64   `json:"cumulative_volume_m3"`
	HourWindow         int       `json:"hour_window"`
}

type StartSummary struct {
	Message           string  `json:"message"`
	TotalTrucksNeeded int     `json:"total_trucks_needed"`
	IntervalMinutes   float64 `json:"interval_minutes"`
	TotalDistanceKm   float64 `json:"total_distance_km"`
	SegmentCount      int     `json:"segment_count"`
	BaselineTravel    string  `json:"baseline_travel"`
}

// WindowStat compares planned against actual arrivals for one hour window.
// The current (partial) hour's target is prorated.
type WindowStat struct {
	Hour   int     `json:"hour"`
	Target float64 `json:"target"`
	Actual int     `json:"actual"`
	Diff   float64 `json:"diff"`
}

type Throughput struct {
	ElapsedHours          float64      `json:"elapsed_hours"`
	ExpectedByNow         float64      `json:"expected_by_now"`
	Completed             int          `json:"completed"`
	ActualPerHour         float64      `json:"actual_per_hour"`
	BehindSchedule        bool         `json:"behind_schedule"`
	ProjectedDelayMinutes float64      `json:"projected_delay_minutes"`
	Windows               []WindowStat `json:"windows"`
}

type SessionStatus struct {
	Config              Config      `json:"config"`
	Stopped             bool        `json:"stopped"`
	Now                 time.Time   `json:"now"`
	TotalTrucksNeeded   int         `json:"total_trucks_needed"`
	Dispatched          int         `json:"dispatched"`
	TrucksEnRoute       int         `json:"trucks_en_route"`
	TrucksCompleted     int         `json:"trucks_completed"`
	TrucksWaiting       int         `json:"trucks_waiting"`
	DeliveredVolumeM3   float64     `json:"delivered_volume_m3"`
	EstimatedCompletion *time.Time  `json:"estimated_completion,omitempty"`
	Throughput          *Throughput `json:"throughput,omitempty"`
	Trucks              []Truck     `json:"trucks"`
	Records             []Record    `json:"records"`
}
