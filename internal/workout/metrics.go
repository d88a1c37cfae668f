package workout

import (
	"time"

	"backend-evolveai/internal/segment"
)

// DataSourceLiveTracking tags workouts produced by the live engine, as
// opposed to imports from external health platforms.
const DataSourceLiveTracking = "live_tracking"

// TrackedWorkoutMetrics is the immutable artifact produced when a tracking
// session stops. It is the sole payload handed to the persistence layer.
type TrackedWorkoutMetrics struct {
	SessionID           string            `json:"session_id"`
	SportType           string            `json:"sport_type"`
	StartedAt           time.Time         `json:"started_at"`
	CompletedAt         time.Time         `json:"completed_at"`
	DurationSeconds     int64             `json:"duration_seconds"`
	DistanceMeters      float64           `json:"distance_meters"`
	AveragePaceSecPerKm float64           `json:"average_pace_sec_per_km,omitempty"`
	AverageSpeedKmh     float64           `json:"average_speed_kmh,omitempty"`
	ElevationGainM      float64           `json:"elevation_gain_m"`
	ElevationLossM      float64           `json:"elevation_loss_m"`
	Calories            float64           `json:"calories"`
	DataSource          string            `json:"data_source"`
	Segments            []segment.Metrics `json:"segments,omitempty"`
}

// MET values per sport type (metabolic equivalent of task).
var metBySport = map[string]float64{
	"running":  9.8,
	"cycling":  7.5,
	"walking":  3.5,
	"hiking":   6.0,
	"swimming": 8.0,
	"rowing":   7.0,
	"strength": 5.0,
}

const defaultMET = 6.0

// MET returns the metabolic equivalent for a sport type.
func MET(sportType string) float64 {
	if met, ok := metBySport[sportType]; ok {
		return met
	}
	return defaultMET
}

// Calories estimates energy expenditure: MET x weight (kg) x hours.
func Calories(sportType string, weightKg, hours float64) float64 {
	if weightKg <= 0 || hours <= 0 {
		return 0
	}
	return MET(sportType) * weightKg * hours
}
