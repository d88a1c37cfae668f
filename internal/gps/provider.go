package gps

import (
	"context"
	"errors"
	"time"
)

// ErrDisabled is returned when location services are unavailable on the device.
var ErrDisabled = errors.New("location services disabled")

// Fix is a single raw location sample as delivered by the device provider.
type Fix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	AltitudeM float64   `json:"altitude_m"`
	AccuracyM float64   `json:"accuracy_m"`
	SpeedMps  float64   `json:"speed_mps"`
	Timestamp time.Time `json:"timestamp"`
}

// Options configures a location subscription.
type Options struct {
	MinDistanceM float64
	MinInterval  time.Duration
	// Background requests foreground-service style delivery so fixes keep
	// arriving while the app is not focused.
	Background bool
}

// Stream delivers fixes until stopped. Stop is idempotent and closes Fixes.
type Stream interface {
	Fixes() <-chan Fix
	Stop()
}

// Provider is the device location collaborator. Implementations enforce OS
// permissions; the engine only reacts to what it is handed.
type Provider interface {
	Enabled(ctx context.Context) bool
	Current(ctx context.Context) (Fix, error)
	Subscribe(ctx context.Context, opts Options) (Stream, error)
}
