package gps

import (
	"context"
	"math"
	"sync"
	"time"
)

const metersPerDegreeLat = 111320.0

// Simulator is a Provider that synthesizes fixes along a circular route at a
// steady speed. It backs local development and the demo wiring in cmd/api.
type Simulator struct {
	CenterLat float64
	CenterLng float64
	RadiusM   float64
	SpeedMps  float64
	AccuracyM float64
	Interval  time.Duration
}

// NewSimulator returns a simulator running laps around the given point.
func NewSimulator(lat, lng float64) *Simulator {
	return &Simulator{
		CenterLat: lat,
		CenterLng: lng,
		RadiusM:   120,
		SpeedMps:  2.8,
		AccuracyM: 6,
		Interval:  time.Second,
	}
}

func (s *Simulator) Enabled(_ context.Context) bool { return true }

func (s *Simulator) Current(_ context.Context) (Fix, error) {
	return s.fixAt(0, time.Now()), nil
}

func (s *Simulator) Subscribe(ctx context.Context, opts Options) (Stream, error) {
	interval := s.Interval
	if opts.MinInterval > interval {
		interval = opts.MinInterval
	}
	if interval <= 0 {
		interval = time.Second
	}

	st := &simStream{ch: make(chan Fix, 16), done: make(chan struct{})}
	go func() {
		defer close(st.ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var traveled float64
		for {
			select {
			case <-ctx.Done():
				return
			case <-st.done:
				return
			case now := <-ticker.C:
				traveled += s.SpeedMps * interval.Seconds()
				fix := s.fixAt(traveled, now)
				select {
				case st.ch <- fix:
				default:
					// drop when the consumer lags, same as a real provider would
				}
			}
		}
	}()
	return st, nil
}

// fixAt places a fix on the route circle after traveling the given distance.
func (s *Simulator) fixAt(traveledM float64, at time.Time) Fix {
	angle := traveledM / s.RadiusM
	dLat := s.RadiusM * math.Cos(angle) / metersPerDegreeLat
	dLng := s.RadiusM * math.Sin(angle) / (metersPerDegreeLat * math.Cos(s.CenterLat*math.Pi/180))
	return Fix{
		Lat:       s.CenterLat + dLat,
		Lng:       s.CenterLng + dLng,
		AltitudeM: 30 + 5*math.Sin(angle),
		AccuracyM: s.AccuracyM,
		SpeedMps:  s.SpeedMps,
		Timestamp: at,
	}
}

type simStream struct {
	ch   chan Fix
	done chan struct{}
	once sync.Once
}

func (s *simStream) Fixes() <-chan Fix { return s.ch }

func (s *simStream) Stop() {
	s.once.Do(func() { close(s.done) })
}
