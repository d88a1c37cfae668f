package segment

import "time"

// TargetType describes how a segment completes.
type TargetType string

const (
	TargetTime     TargetType = "time"     // target value in seconds
	TargetDistance TargetType = "distance" // target value in meters
	TargetOpen     TargetType = "open"     // manual skip only
)

const (
	transitionCountdownSec = 3
	timeAlertLeadSec       = 10.0
	distanceAlertFraction  = 0.10
	distanceAlertCapM      = 100.0
)

// Segment is one planned interval of a structured workout.
type Segment struct {
	Name        string     `json:"name,omitempty"`
	Target      TargetType `json:"target"`
	TargetValue float64    `json:"target_value,omitempty"`
}

// Metrics carries a segment plan entry plus its accumulated actuals.
type Metrics struct {
	Segment
	ActualDurationSec   float64   `json:"actual_duration_sec"`
	ActualDistanceM     float64   `json:"actual_distance_m"`
	StartedAt           time.Time `json:"started_at,omitempty"`
	CompletedAt         time.Time `json:"completed_at,omitempty"`
	AveragePaceSecPerKm float64   `json:"average_pace_sec_per_km,omitempty"`
	Completed           bool      `json:"completed"`
}

type AlertKind string

const (
	AlertApproaching AlertKind = "approaching"
	AlertCompleted   AlertKind = "completed"
)

// Alert is a single-fire notification about the current segment.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Index   int       `json:"index"`
	Segment Metrics   `json:"segment"`
}

// State is the observable interval sub-state of a tracking session.
type State struct {
	Segments               []Metrics `json:"segments"`
	CurrentIndex           int       `json:"current_index"`
	AutoAdvance            bool      `json:"auto_advance"`
	TransitionRemainingSec int       `json:"transition_remaining_sec,omitempty"`
}

// Event reports what a tracker mutation produced.
type Event struct {
	Alerts            []Alert
	EnteredTransition bool
	Advanced          bool
}

// Tracker accumulates actuals for the current segment and drives target
// detection, the approaching alert and the advance countdown.
type Tracker struct {
	state         State
	approachFired bool
	targetFired   bool
}

// NewTracker starts a tracker on the given plan with auto-advance enabled.
// The first segment is marked started immediately.
func NewTracker(plan []Segment, now time.Time) *Tracker {
	metrics := make([]Metrics, len(plan))
	for i, seg := range plan {
		metrics[i] = Metrics{Segment: seg}
	}
	if len(metrics) > 0 {
		metrics[0].StartedAt = now
	}
	return &Tracker{state: State{Segments: metrics, AutoAdvance: true}}
}

// State returns a copy safe to embed in a snapshot.
func (t *Tracker) State() State {
	st := t.state
	st.Segments = make([]Metrics, len(t.state.Segments))
	copy(st.Segments, t.state.Segments)
	return st
}

// Finished reports whether every segment has completed.
func (t *Tracker) Finished() bool {
	return t.state.CurrentIndex >= len(t.state.Segments)
}

// InTransition reports whether the advance countdown is running.
func (t *Tracker) InTransition() bool {
	return t.state.TransitionRemainingSec > 0
}

// ToggleAutoAdvance flips auto-advance and returns the new value. Re-enabling
// clears the target latch, so a segment whose target was met while disabled
// completes on the next evaluation instead of waiting for a manual skip.
func (t *Tracker) ToggleAutoAdvance() bool {
	t.state.AutoAdvance = !t.state.AutoAdvance
	if t.state.AutoAdvance {
		t.targetFired = false
	}
	return t.state.AutoAdvance
}

// Tick adds one second to the current segment and re-evaluates its target.
func (t *Tracker) Tick(now time.Time) Event {
	if t.Finished() || t.InTransition() {
		return Event{}
	}
	t.state.Segments[t.state.CurrentIndex].ActualDurationSec++
	return t.evaluate(now)
}

// AddDistance routes accepted distance to the current segment and
// re-evaluates its target.
func (t *Tracker) AddDistance(meters float64, now time.Time) Event {
	if t.Finished() || t.InTransition() || meters <= 0 {
		return Event{}
	}
	t.state.Segments[t.state.CurrentIndex].ActualDistanceM += meters
	return t.evaluate(now)
}

// Skip completes the current segment and advances immediately, bypassing the
// countdown. Works for any target type, including open segments.
func (t *Tracker) Skip(now time.Time) Event {
	if t.Finished() {
		return Event{}
	}
	var ev Event
	cur := &t.state.Segments[t.state.CurrentIndex]
	if !cur.Completed {
		t.complete(cur, now)
		ev.Alerts = append(ev.Alerts, Alert{Kind: AlertCompleted, Index: t.state.CurrentIndex, Segment: *cur})
	}
	t.advance(now)
	ev.Advanced = true
	return ev
}

// TickTransition decrements the advance countdown once; at zero it advances
// to the next segment and reports true.
func (t *Tracker) TickTransition(now time.Time) bool {
	if !t.InTransition() {
		return false
	}
	t.state.TransitionRemainingSec--
	if t.state.TransitionRemainingSec > 0 {
		return false
	}
	t.advance(now)
	return true
}

func (t *Tracker) evaluate(now time.Time) Event {
	var ev Event
	cur := &t.state.Segments[t.state.CurrentIndex]
	if cur.Target == TargetOpen {
		return ev
	}

	var remaining, band float64
	switch cur.Target {
	case TargetTime:
		remaining = cur.TargetValue - cur.ActualDurationSec
		band = timeAlertLeadSec
	case TargetDistance:
		remaining = cur.TargetValue - cur.ActualDistanceM
		band = cur.TargetValue * distanceAlertFraction
		if band > distanceAlertCapM {
			band = distanceAlertCapM
		}
	}

	// Level-crossing check: fires once on entering the band, so a skipped
	// tick past the exact boundary cannot swallow the alert.
	if !t.approachFired && remaining > 0 && remaining <= band {
		t.approachFired = true
		ev.Alerts = append(ev.Alerts, Alert{Kind: AlertApproaching, Index: t.state.CurrentIndex, Segment: *cur})
	}

	if remaining <= 0 && !t.targetFired {
		t.targetFired = true
		if t.state.AutoAdvance {
			t.complete(cur, now)
			ev.Alerts = append(ev.Alerts, Alert{Kind: AlertCompleted, Index: t.state.CurrentIndex, Segment: *cur})
			if t.state.CurrentIndex == len(t.state.Segments)-1 {
				// last segment: session continues free-form
				t.state.CurrentIndex++
			} else {
				t.state.TransitionRemainingSec = transitionCountdownSec
				ev.EnteredTransition = true
			}
		} else {
			ev.Alerts = append(ev.Alerts, Alert{Kind: AlertCompleted, Index: t.state.CurrentIndex, Segment: *cur})
		}
	}
	return ev
}

func (t *Tracker) complete(cur *Metrics, now time.Time) {
	cur.Completed = true
	cur.CompletedAt = now
	if cur.ActualDistanceM > 0 && cur.ActualDurationSec > 0 {
		cur.AveragePaceSecPerKm = cur.ActualDurationSec / (cur.ActualDistanceM / 1000)
	}
}

func (t *Tracker) advance(now time.Time) {
	t.state.TransitionRemainingSec = 0
	t.state.CurrentIndex++
	t.approachFired = false
	t.targetFired = false
	if !t.Finished() {
		t.state.Segments[t.state.CurrentIndex].StartedAt = now
	}
}
