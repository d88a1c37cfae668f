package store

import (
	"context"
	"time"

	"backend-evolveai/internal/db"
	"backend-evolveai/internal/workout"

	"github.com/google/uuid"
)

// Workout is one persisted row of finished-workout metrics.
type Workout struct {
	ID                  string    `json:"id"`
	SessionID           string    `json:"session_id"`
	SportType           string    `json:"sport_type"`
	StartedAt           time.Time `json:"started_at"`
	CompletedAt         time.Time `json:"completed_at"`
	DurationSeconds     int64     `json:"duration_seconds"`
	DistanceMeters      float64   `json:"distance_meters"`
	AveragePaceSecPerKm float64   `json:"average_pace_sec_per_km,omitempty"`
	AverageSpeedKmh     float64   `json:"average_speed_kmh,omitempty"`
	ElevationGainM      float64   `json:"elevation_gain_m"`
	ElevationLossM      float64   `json:"elevation_loss_m"`
	Calories            float64   `json:"calories"`
	DataSource          string    `json:"data_source"`
	CreatedAt           time.Time `json:"created_at"`
}

// Service persists the metrics artifact the engine produces on stop. It is
// the external persistence collaborator: the engine itself never writes here.
type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) SaveWorkout(ctx context.Context, m workout.TrackedWorkoutMetrics) (Workout, error) {
	w := Workout{
		ID:                  uuid.NewString(),
		SessionID:           m.SessionID,
		SportType:           m.SportType,
		StartedAt:           m.StartedAt,
		CompletedAt:         m.CompletedAt,
		DurationSeconds:     m.DurationSeconds,
		DistanceMeters:      m.DistanceMeters,
		AveragePaceSecPerKm: m.AveragePaceSecPerKm,
		AverageSpeedKmh:     m.AverageSpeedKmh,
		ElevationGainM:      m.ElevationGainM,
		ElevationLossM:      m.ElevationLossM,
		Calories:            m.Calories,
		DataSource:          m.DataSource,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO workouts (id, session_id, sport_type, started_at, completed_at, duration_sec, distance_m, avg_pace_sec_per_km, avg_speed_kmh, elevation_gain_m, elevation_loss_m, calories, data_source)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at
	`, w.ID, w.SessionID, w.SportType, w.StartedAt, w.CompletedAt, w.DurationSeconds, w.DistanceMeters,
		w.AveragePaceSecPerKm, w.AverageSpeedKmh, w.ElevationGainM, w.ElevationLossM, w.Calories, w.DataSource)
	if err := row.Scan(&w.CreatedAt); err != nil {
		return Workout{}, err
	}
	return w, nil
}

func (s *Service) GetWorkout(ctx context.Context, id string) (Workout, error) {
	var w Workout
	row := s.db.QueryRow(ctx, `
		SELECT id, session_id, sport_type, started_at, completed_at, duration_sec, distance_m, COALESCE(avg_pace_sec_per_km,0), COALESCE(avg_speed_kmh,0), elevation_gain_m, elevation_loss_m, calories, data_source, created_at
		FROM workouts WHERE id=$1
	`, id)
	if err := row.Scan(&w.ID, &w.SessionID, &w.SportType, &w.StartedAt, &w.CompletedAt, &w.DurationSeconds, &w.DistanceMeters,
		&w.AveragePaceSecPerKm, &w.AverageSpeedKmh, &w.ElevationGainM, &w.ElevationLossM, &w.Calories, &w.DataSource, &w.CreatedAt); err != nil {
		return Workout{}, err
	}
	return w, nil
}

func (s *Service) ListWorkouts(ctx context.Context, sessionID string) ([]Workout, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, sport_type, started_at, completed_at, duration_sec, distance_m, COALESCE(avg_pace_sec_per_km,0), COALESCE(avg_speed_kmh,0), elevation_gain_m, elevation_loss_m, calories, data_source, created_at
		FROM workouts WHERE session_id=$1
		ORDER BY completed_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.SessionID, &w.SportType, &w.StartedAt, &w.CompletedAt, &w.DurationSeconds, &w.DistanceMeters,
			&w.AveragePaceSecPerKm, &w.AverageSpeedKmh, &w.ElevationGainM, &w.ElevationLossM, &w.Calories, &w.DataSource, &w.CreatedAt); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	return workouts, nil
}
