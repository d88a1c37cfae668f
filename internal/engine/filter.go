package engine

import (
	"backend-evolveai/internal/geo"
	"backend-evolveai/internal/gps"
)

// Noise gates, tuned for consumer phone GPS.
const (
	maxAccuracyM      = 50.0 // beyond this a fix only updates the signal annotation
	minDistanceM      = 2.0  // below this a fix is jitter
	speedWindow       = 10   // smoothing ring buffer size
	minSpeedForPaceMs = 0.1  // below this no current pace is derived
	elevationNoiseM   = 3.0  // altitude deltas under this are ignored
)

// sample is the outcome of filtering one fix.
type sample struct {
	accepted    bool
	distanceM   float64
	speedMps    float64 // instantaneous, distance / elapsed
	smoothedMps float64 // ring buffer mean, 0 until a speed sample exists
	gainM       float64
	lossM       float64
}

// fixFilter rejects inaccurate and jittery fixes and smooths speed over a
// bounded window. Altitude is gated separately: GPS vertical noise is much
// larger than horizontal noise.
type fixFilter struct {
	last     *gps.Fix // last accepted fix
	lastAltM float64  // last altitude that cleared the noise gate
	speeds   [speedWindow]float64
	count    int
	next     int
}

func (f *fixFilter) reset() {
	*f = fixFilter{}
}

// apply runs one fix through the gates. The first accepted fix anchors the
// track and contributes no distance or speed.
func (f *fixFilter) apply(fix gps.Fix) sample {
	if fix.AccuracyM > maxAccuracyM {
		return sample{}
	}

	if f.last == nil {
		f.anchor(fix)
		return sample{accepted: true}
	}

	dist := geo.DistanceMeters(f.last.Lat, f.last.Lng, fix.Lat, fix.Lng)
	if dist < minDistanceM {
		return sample{}
	}

	dt := fix.Timestamp.Sub(f.last.Timestamp).Seconds()
	if dt <= 0 {
		return sample{}
	}

	s := sample{accepted: true, distanceM: dist, speedMps: dist / dt}
	f.push(s.speedMps)
	s.smoothedMps = f.smoothed()

	delta := fix.AltitudeM - f.lastAltM
	if delta >= elevationNoiseM {
		s.gainM = delta
		f.lastAltM = fix.AltitudeM
	} else if delta <= -elevationNoiseM {
		s.lossM = -delta
		f.lastAltM = fix.AltitudeM
	}

	last := fix
	f.last = &last
	return s
}

func (f *fixFilter) anchor(fix gps.Fix) {
	last := fix
	f.last = &last
	f.lastAltM = fix.AltitudeM
}

func (f *fixFilter) push(speed float64) {
	f.speeds[f.next] = speed
	f.next = (f.next + 1) % speedWindow
	if f.count < speedWindow {
		f.count++
	}
}

func (f *fixFilter) smoothed() float64 {
	if f.count == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < f.count; i++ {
		sum += f.speeds[i]
	}
	return sum / float64(f.count)
}
