package engine

import (
	"testing"
	"time"

	"backend-evolveai/internal/gps"
)

// ~10 m of latitude
const latStep10m = 10.0 / 111194.93

func fixAt(lat float64, alt float64, at time.Time) gps.Fix {
	return gps.Fix{Lat: lat, Lng: 0, AltitudeM: alt, AccuracyM: 5, SpeedMps: 3, Timestamp: at}
}

func TestFilterRejectsInaccurateFix(t *testing.T) {
	var f fixFilter
	fix := fixAt(0, 0, time.Now())
	fix.AccuracyM = 80

	s := f.apply(fix)
	if s.accepted {
		t.Fatalf("fix above the accuracy gate must be rejected")
	}
	if f.last != nil {
		t.Fatalf("rejected fix must not anchor the track")
	}
}

func TestFilterFirstFixAnchors(t *testing.T) {
	var f fixFilter
	s := f.apply(fixAt(0, 30, time.Now()))
	if !s.accepted || s.distanceM != 0 || s.speedMps != 0 {
		t.Fatalf("first fix should anchor without contributing: %+v", s)
	}
}

func TestFilterRejectsJitter(t *testing.T) {
	var f fixFilter
	now := time.Now()
	f.apply(fixAt(0, 30, now))

	// ~1 m away
	s := f.apply(fixAt(latStep10m/10, 30, now.Add(time.Second)))
	if s.accepted {
		t.Fatalf("sub-threshold movement must be treated as jitter")
	}
}

func TestFilterAccumulatesDistanceAndSpeed(t *testing.T) {
	var f fixFilter
	now := time.Now()
	f.apply(fixAt(0, 30, now))

	s := f.apply(fixAt(latStep10m, 30, now.Add(2*time.Second)))
	if !s.accepted {
		t.Fatalf("expected acceptance")
	}
	if s.distanceM < 9.5 || s.distanceM > 10.5 {
		t.Fatalf("unexpected distance: %v", s.distanceM)
	}
	if s.speedMps < 4.7 || s.speedMps > 5.3 {
		t.Fatalf("unexpected speed: %v", s.speedMps)
	}
	if s.smoothedMps != s.speedMps {
		t.Fatalf("single sample should equal its mean")
	}
}

func TestFilterRejectsNonPositiveTimeDelta(t *testing.T) {
	var f fixFilter
	now := time.Now()
	f.apply(fixAt(0, 30, now))

	if s := f.apply(fixAt(latStep10m, 30, now)); s.accepted {
		t.Fatalf("zero time delta must be rejected")
	}
	if s := f.apply(fixAt(latStep10m, 30, now.Add(-time.Second))); s.accepted {
		t.Fatalf("out-of-order fix must be rejected")
	}
}

func TestFilterSmoothingWindowMean(t *testing.T) {
	var f fixFilter
	now := time.Now()
	f.apply(fixAt(0, 30, now))

	var lat float64
	var s sample
	// 12 samples of alternating 5 and 10 m/s; the window keeps the last 10
	for i := 1; i <= 12; i++ {
		step := latStep10m / 2 // 5 m
		if i%2 == 0 {
			step = latStep10m // 10 m
		}
		lat += step
		s = f.apply(fixAt(lat, 30, now.Add(time.Duration(i)*time.Second)))
	}
	if s.smoothedMps < 7.3 || s.smoothedMps > 7.7 {
		t.Fatalf("unexpected smoothed speed: %v", s.smoothedMps)
	}
}

func TestFilterElevationNoiseGate(t *testing.T) {
	var f fixFilter
	now := time.Now()
	f.apply(fixAt(0, 30, now))

	// +2 m is under the noise threshold
	s := f.apply(fixAt(latStep10m, 32, now.Add(time.Second)))
	if s.gainM != 0 || s.lossM != 0 {
		t.Fatalf("sub-threshold altitude delta must be ignored: %+v", s)
	}

	// +5 m from the last accepted altitude (still 30)
	s = f.apply(fixAt(2*latStep10m, 35, now.Add(2*time.Second)))
	if s.gainM != 5 {
		t.Fatalf("expected 5 m gain, got %v", s.gainM)
	}

	// -4 m from 35
	s = f.apply(fixAt(3*latStep10m, 31, now.Add(3*time.Second)))
	if s.lossM != 4 {
		t.Fatalf("expected 4 m loss, got %v", s.lossM)
	}
}

func TestFilterReset(t *testing.T) {
	var f fixFilter
	f.apply(fixAt(0, 30, time.Now()))
	f.reset()
	if f.last != nil || f.count != 0 {
		t.Fatalf("reset should clear the filter")
	}
}
