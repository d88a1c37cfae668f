package engine

import (
	"time"

	"backend-evolveai/internal/gps"
	"backend-evolveai/internal/segment"
)

// Status is the lifecycle state of the tracking machine.
type Status string

const (
	StatusIdle              Status = "idle"
	StatusCountdown         Status = "countdown"
	StatusTracking          Status = "tracking"
	StatusPaused            Status = "paused"
	StatusAutoPaused        Status = "auto_paused"
	StatusSegmentTransition Status = "segment_transition"
	StatusStopping          Status = "stopping"
	StatusSummary           Status = "summary"
)

// Active reports whether a session is in progress.
func (s Status) Active() bool {
	switch s {
	case StatusTracking, StatusPaused, StatusAutoPaused, StatusSegmentTransition:
		return true
	}
	return false
}

// Paused reports whether the session clock is halted by a pause.
func (s Status) Paused() bool {
	return s == StatusPaused || s == StatusAutoPaused
}

// TrackingState is the canonical, single-writer record of an in-progress
// session. Snapshots of it are value copies; observers never see the live
// struct.
type TrackingState struct {
	Status    Status `json:"status"`
	SessionID string `json:"session_id,omitempty"`
	SportType string `json:"sport_type,omitempty"`

	Segments *segment.State `json:"segments,omitempty"`

	StartedAt time.Time  `json:"started_at,omitempty"`
	PausedAt  *time.Time `json:"paused_at,omitempty"`

	ElapsedSeconds     int64 `json:"elapsed_seconds"`
	TotalPausedSeconds int64 `json:"total_paused_seconds"`

	DistanceMeters float64 `json:"distance_meters"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	ElevationLossM float64 `json:"elevation_loss_m"`

	CurrentPaceSecPerKm *float64 `json:"current_pace_sec_per_km,omitempty"`
	AveragePaceSecPerKm *float64 `json:"average_pace_sec_per_km,omitempty"`
	AverageSpeedKmh     *float64 `json:"average_speed_kmh,omitempty"`

	GPSSignal gps.Signal `json:"gps_signal"`
	LastFix   *gps.Fix   `json:"last_fix,omitempty"`

	Error string `json:"error,omitempty"`
}

func initialState() TrackingState {
	return TrackingState{Status: StatusIdle}
}

// clone returns a deep value copy safe to hand to observers.
func (st TrackingState) clone() TrackingState {
	out := st
	if st.PausedAt != nil {
		v := *st.PausedAt
		out.PausedAt = &v
	}
	if st.CurrentPaceSecPerKm != nil {
		v := *st.CurrentPaceSecPerKm
		out.CurrentPaceSecPerKm = &v
	}
	if st.AveragePaceSecPerKm != nil {
		v := *st.AveragePaceSecPerKm
		out.AveragePaceSecPerKm = &v
	}
	if st.AverageSpeedKmh != nil {
		v := *st.AverageSpeedKmh
		out.AverageSpeedKmh = &v
	}
	if st.LastFix != nil {
		v := *st.LastFix
		out.LastFix = &v
	}
	if st.Segments != nil {
		segs := *st.Segments
		segs.Segments = make([]segment.Metrics, len(st.Segments.Segments))
		copy(segs.Segments, st.Segments.Segments)
		out.Segments = &segs
	}
	return out
}
