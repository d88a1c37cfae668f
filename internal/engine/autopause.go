package engine

import "time"

// Dual-threshold hysteresis: the resume threshold sits above the pause
// threshold so speeds hovering at the boundary cannot flap the state.
const (
	autoPauseSpeedMps  = 0.8
	autoResumeSpeedMps = 1.2
	autoPauseAfter     = 5 * time.Second
)

// autoPauseDetector tracks how long instantaneous speed has stayed below the
// pause threshold. It is evaluated on fix timestamps so replayed fix
// sequences behave deterministically.
type autoPauseDetector struct {
	belowSince time.Time
	below      bool
}

func (d *autoPauseDetector) reset() {
	*d = autoPauseDetector{}
}

// shouldPause reports whether the session has been slow long enough to
// auto-pause. Call only while tracking.
func (d *autoPauseDetector) shouldPause(speedMps float64, at time.Time) bool {
	if speedMps >= autoPauseSpeedMps {
		d.reset()
		return false
	}
	if !d.below {
		d.below = true
		d.belowSince = at
		return false
	}
	return at.Sub(d.belowSince) >= autoPauseAfter
}

// shouldResume reports whether speed has climbed past the resume threshold.
// Call only while auto-paused.
func (d *autoPauseDetector) shouldResume(speedMps float64) bool {
	return speedMps > autoResumeSpeedMps
}
