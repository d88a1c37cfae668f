package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"backend-evolveai/internal/gps"
	"backend-evolveai/internal/segment"
	"backend-evolveai/internal/stream"
	"backend-evolveai/internal/workout"

	"github.com/google/uuid"
)

var timeNow = time.Now

const defaultWeightKg = 70.0

// Engine is the live tracking state machine. Exactly one session may exist at
// a time; one mutex serializes the two event sources (location fixes and
// clock ticks) along with every API call, so TrackingState has a single
// logical writer.
type Engine struct {
	mu sync.Mutex

	provider gps.Provider
	grant    BackgroundGrant
	hub      *stream.Hub
	weightKg float64

	state     TrackingState
	filter    fixFilter
	autoPause autoPauseDetector
	segments  *segment.Tracker
	onAlert   func(segment.Alert)

	clock        *sessionClock
	countdown    *sessionClock
	tickInterval time.Duration
	res          *resources
	// epoch invalidates in-flight ticks and buffered fixes from a previous
	// session once it has been stopped or discarded
	epoch uint64

	obsMu     sync.RWMutex
	observers map[string]func(TrackingState)
}

// New builds an idle engine. hub may be nil when no remote observers exist;
// weightKg feeds the calorie estimate and defaults to 70 when unset.
func New(provider gps.Provider, hub *stream.Hub, weightKg float64) *Engine {
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}
	return &Engine{
		provider:     provider,
		hub:          hub,
		weightKg:     weightKg,
		state:        initialState(),
		tickInterval: time.Second,
		observers:    map[string]func(TrackingState){},
	}
}

// UseBackgroundGrant installs the platform background-execution collaborator.
func (e *Engine) UseBackgroundGrant(g BackgroundGrant) {
	e.mu.Lock()
	e.grant = g
	e.mu.Unlock()
}

// StartTracking begins a session. Calling it again for the same session id
// while active is a no-op; starting a different session while one is active
// is rejected, as is starting while a stop is finalizing.
func (e *Engine) StartTracking(ctx context.Context, sessionID, sportType string, plan []segment.Segment, onAlert func(segment.Alert)) error {
	e.mu.Lock()
	if e.state.Status.Active() {
		if sessionID != "" && e.state.SessionID == sessionID {
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
		return ErrSessionActive
	}
	if e.state.Status == StatusStopping || e.state.Status == StatusSummary {
		e.mu.Unlock()
		return ErrSessionFinalizing
	}
	if !e.provider.Enabled(ctx) {
		e.mu.Unlock()
		return ErrLocationDisabled
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	res := &resources{cancel: cancel}
	if e.grant != nil {
		release, err := e.grant.Acquire(ctx)
		if err != nil {
			res.release()
			return e.failStartLocked(fmt.Errorf("background grant: %w", err))
		}
		res.grantRelease = release
	}
	fixes, err := e.provider.Subscribe(streamCtx, gps.Options{
		MinDistanceM: minDistanceM,
		MinInterval:  time.Second,
		Background:   true,
	})
	if err != nil {
		res.release()
		return e.failStartLocked(fmt.Errorf("location subscribe: %w", err))
	}
	res.stream = fixes

	e.epoch++
	e.res = res
	e.state = initialState()
	e.state.Status = StatusTracking
	e.state.SessionID = sessionID
	e.state.SportType = sportType
	e.state.StartedAt = timeNow()
	e.filter.reset()
	e.autoPause.reset()
	e.segments = nil
	e.onAlert = onAlert
	if len(plan) > 0 {
		e.segments = segment.NewTracker(plan, e.state.StartedAt)
	}
	e.startClockLocked()

	go func(s gps.Stream, epoch uint64) {
		for fix := range s.Fixes() {
			e.handleFix(epoch, fix)
		}
	}(fixes, e.epoch)

	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return nil
}

// failStartLocked records a start failure on the idle state so observers see
// why nothing began. Unlocks and publishes; returns err for the caller.
func (e *Engine) failStartLocked(err error) error {
	e.state.Error = err.Error()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return err
}

// BeginCountdown parks the machine in the pre-start countdown state. The
// countdown itself is UI-driven; the engine attaches no timer to it.
func (e *Engine) BeginCountdown() error {
	e.mu.Lock()
	if e.state.Status == StatusCountdown {
		e.mu.Unlock()
		return nil
	}
	if e.state.Status != StatusIdle {
		e.mu.Unlock()
		return ErrSessionActive
	}
	e.state.Status = StatusCountdown
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return nil
}

// PauseTracking halts the session clock and records the pause timestamp.
func (e *Engine) PauseTracking() error {
	e.mu.Lock()
	if e.state.Status != StatusTracking {
		status := e.state.Status
		e.mu.Unlock()
		if !status.Active() {
			return ErrNoActiveSession
		}
		return ErrNotTracking
	}
	e.pauseLocked(StatusPaused, timeNow())
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return nil
}

// ResumeTracking restarts the clock and credits the elapsed pause time.
func (e *Engine) ResumeTracking() error {
	e.mu.Lock()
	if !e.state.Status.Paused() {
		e.mu.Unlock()
		return ErrNotPaused
	}
	e.resumeLocked(timeNow())
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return nil
}

// StopTracking finalizes the session, releases every resource and returns the
// immutable workout metrics for persistence by the caller.
func (e *Engine) StopTracking() (workout.TrackedWorkoutMetrics, error) {
	e.mu.Lock()
	if !e.state.Status.Active() {
		e.mu.Unlock()
		return workout.TrackedWorkoutMetrics{}, ErrNoActiveSession
	}
	now := timeNow()
	e.state.Status = StatusStopping
	e.stopClockLocked()
	e.stopCountdownLocked()
	e.releaseLocked()
	e.epoch++
	if e.state.PausedAt != nil {
		e.state.TotalPausedSeconds += int64(now.Sub(*e.state.PausedAt) / time.Second)
		e.state.PausedAt = nil
	}
	metrics := e.finalizeLocked(now)
	e.state.Status = StatusSummary
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return metrics, nil
}

// DiscardTracking abandons the session from any state, releases resources and
// resets to idle. No metrics are produced. Safe to call repeatedly.
func (e *Engine) DiscardTracking() {
	e.mu.Lock()
	if e.state.Status == StatusIdle {
		e.mu.Unlock()
		return
	}
	e.stopClockLocked()
	e.stopCountdownLocked()
	e.releaseLocked()
	e.epoch++
	e.state = initialState()
	e.segments = nil
	e.onAlert = nil
	e.filter.reset()
	e.autoPause.reset()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
}

// SkipToNextSegment completes the current segment immediately, bypassing the
// transition countdown.
func (e *Engine) SkipToNextSegment() error {
	e.mu.Lock()
	if !e.state.Status.Active() {
		e.mu.Unlock()
		return ErrNoActiveSession
	}
	if e.segments == nil {
		e.mu.Unlock()
		return ErrNoSegments
	}
	if e.state.Status.Paused() {
		e.mu.Unlock()
		return ErrNotTracking
	}
	wasTransition := e.state.Status == StatusSegmentTransition
	ev := e.segments.Skip(timeNow())
	if wasTransition {
		e.stopCountdownLocked()
		e.state.Status = StatusTracking
		e.startClockLocked()
	}
	cb := e.onAlert
	snap := e.snapshotLocked()
	e.mu.Unlock()
	dispatchAlerts(cb, ev.Alerts)
	e.publish(snap)
	return nil
}

// ToggleAutoAdvance flips segment auto-advance and returns the new value.
func (e *Engine) ToggleAutoAdvance() (bool, error) {
	e.mu.Lock()
	if !e.state.Status.Active() {
		e.mu.Unlock()
		return false, ErrNoActiveSession
	}
	if e.segments == nil {
		e.mu.Unlock()
		return false, ErrNoSegments
	}
	enabled := e.segments.ToggleAutoAdvance()
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
	return enabled, nil
}

// CheckGPSAvailability is the pre-start readiness probe.
func (e *Engine) CheckGPSAvailability(ctx context.Context) (gps.Signal, error) {
	if !e.provider.Enabled(ctx) {
		return gps.Signal{Quality: gps.QualityNone}, ErrLocationDisabled
	}
	fix, err := e.provider.Current(ctx)
	if err != nil {
		return gps.Signal{Quality: gps.QualityNone}, fmt.Errorf("current position: %w", err)
	}
	return gps.SignalFor(fix.AccuracyM), nil
}

// GetState returns a snapshot of the canonical state.
func (e *Engine) GetState() TrackingState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Subscribe registers an observer and returns its unsubscribe function.
// Observers receive a value copy on every mutation; no ordering is
// guaranteed between observers.
func (e *Engine) Subscribe(fn func(TrackingState)) func() {
	token := uuid.NewString()
	e.obsMu.Lock()
	e.observers[token] = fn
	e.obsMu.Unlock()
	return func() {
		e.obsMu.Lock()
		delete(e.observers, token)
		e.obsMu.Unlock()
	}
}

// handleFix is the location-callback entry point.
func (e *Engine) handleFix(epoch uint64, fix gps.Fix) {
	e.mu.Lock()
	if epoch != e.epoch || !e.state.Status.Active() {
		e.mu.Unlock()
		return
	}

	e.state.GPSSignal = gps.SignalFor(fix.AccuracyM)
	if !e.state.GPSSignal.Quality.Usable() {
		// wildly inaccurate fix: annotate the signal, discard everything else
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.publish(snap)
		return
	}

	last := fix
	e.state.LastFix = &last

	var alerts []segment.Alert
	switch e.state.Status {
	case StatusPaused:
		// manual pause: nothing accumulates and nothing auto-resumes
	case StatusAutoPaused:
		if e.autoPause.shouldResume(fix.SpeedMps) {
			e.resumeLocked(fix.Timestamp)
		}
	case StatusTracking:
		if e.autoPause.shouldPause(fix.SpeedMps, fix.Timestamp) {
			e.pauseLocked(StatusAutoPaused, fix.Timestamp)
			break
		}
		s := e.applySampleLocked(fix)
		if s.accepted && s.distanceM > 0 && e.segments != nil && !e.segments.Finished() {
			ev := e.segments.AddDistance(s.distanceM, fix.Timestamp)
			alerts = ev.Alerts
			if ev.EnteredTransition {
				e.enterTransitionLocked()
			}
		}
	case StatusSegmentTransition:
		// session totals keep accruing; segment actuals are frozen until the
		// countdown advances
		e.applySampleLocked(fix)
	}

	cb := e.onAlert
	snap := e.snapshotLocked()
	e.mu.Unlock()
	dispatchAlerts(cb, alerts)
	e.publish(snap)
}

// handleTick is the 1 Hz session clock entry point.
func (e *Engine) handleTick(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || e.state.Status != StatusTracking {
		e.mu.Unlock()
		return
	}
	e.state.ElapsedSeconds++
	var alerts []segment.Alert
	if e.segments != nil && !e.segments.Finished() {
		ev := e.segments.Tick(timeNow())
		alerts = ev.Alerts
		if ev.EnteredTransition {
			e.enterTransitionLocked()
		}
	}
	e.recomputeAveragesLocked()
	cb := e.onAlert
	snap := e.snapshotLocked()
	e.mu.Unlock()
	dispatchAlerts(cb, alerts)
	e.publish(snap)
}

// handleTransitionTick drives the independent segment-transition countdown.
func (e *Engine) handleTransitionTick(epoch uint64) {
	e.mu.Lock()
	if epoch != e.epoch || e.state.Status != StatusSegmentTransition {
		e.mu.Unlock()
		return
	}
	if e.segments.TickTransition(timeNow()) {
		e.stopCountdownLocked()
		e.state.Status = StatusTracking
		e.startClockLocked()
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
}

// applySampleLocked runs the fix through the noise filter and folds an
// accepted sample into the session accumulators.
func (e *Engine) applySampleLocked(fix gps.Fix) sample {
	s := e.filter.apply(fix)
	if !s.accepted || s.distanceM == 0 {
		return s
	}
	e.state.DistanceMeters += s.distanceM
	e.state.ElevationGainM += s.gainM
	e.state.ElevationLossM += s.lossM
	if s.smoothedMps > minSpeedForPaceMs {
		pace := 1000 / s.smoothedMps
		e.state.CurrentPaceSecPerKm = &pace
	} else {
		e.state.CurrentPaceSecPerKm = nil
	}
	e.recomputeAveragesLocked()
	return s
}

// recomputeAveragesLocked derives the session averages from the cumulative
// totals, never from the smoothing buffer.
func (e *Engine) recomputeAveragesLocked() {
	if e.state.ElapsedSeconds <= 0 || e.state.DistanceMeters <= 0 {
		return
	}
	mps := e.state.DistanceMeters / float64(e.state.ElapsedSeconds)
	kmh := mps * 3.6
	pace := float64(e.state.ElapsedSeconds) / (e.state.DistanceMeters / 1000)
	e.state.AverageSpeedKmh = &kmh
	e.state.AveragePaceSecPerKm = &pace
}

func (e *Engine) pauseLocked(status Status, at time.Time) {
	pausedAt := at
	e.state.Status = status
	e.state.PausedAt = &pausedAt
	e.stopClockLocked()
}

func (e *Engine) resumeLocked(at time.Time) {
	if e.state.PausedAt != nil {
		e.state.TotalPausedSeconds += int64(at.Sub(*e.state.PausedAt) / time.Second)
		e.state.PausedAt = nil
	}
	e.state.Status = StatusTracking
	e.autoPause.reset()
	e.startClockLocked()
}

func (e *Engine) enterTransitionLocked() {
	e.state.Status = StatusSegmentTransition
	e.stopClockLocked()
	epoch := e.epoch
	e.countdown = startClock(e.tickInterval, func() { e.handleTransitionTick(epoch) })
}

func (e *Engine) startClockLocked() {
	e.stopClockLocked()
	epoch := e.epoch
	e.clock = startClock(e.tickInterval, func() { e.handleTick(epoch) })
}

func (e *Engine) stopClockLocked() {
	if e.clock != nil {
		e.clock.stop()
		e.clock = nil
	}
}

func (e *Engine) stopCountdownLocked() {
	if e.countdown != nil {
		e.countdown.stop()
		e.countdown = nil
	}
}

func (e *Engine) releaseLocked() {
	if e.res != nil {
		e.res.release()
		e.res = nil
	}
}

func (e *Engine) finalizeLocked(completedAt time.Time) workout.TrackedWorkoutMetrics {
	m := workout.TrackedWorkoutMetrics{
		SessionID:       e.state.SessionID,
		SportType:       e.state.SportType,
		StartedAt:       e.state.StartedAt,
		CompletedAt:     completedAt,
		DurationSeconds: e.state.ElapsedSeconds,
		DistanceMeters:  e.state.DistanceMeters,
		ElevationGainM:  e.state.ElevationGainM,
		ElevationLossM:  e.state.ElevationLossM,
		DataSource:      workout.DataSourceLiveTracking,
	}
	if e.state.AveragePaceSecPerKm != nil {
		m.AveragePaceSecPerKm = *e.state.AveragePaceSecPerKm
	}
	if e.state.AverageSpeedKmh != nil {
		m.AverageSpeedKmh = *e.state.AverageSpeedKmh
	}
	m.Calories = workout.Calories(e.state.SportType, e.weightKg, float64(e.state.ElapsedSeconds)/3600)
	if e.segments != nil {
		m.Segments = e.segments.State().Segments
	}
	return m
}

func (e *Engine) snapshotLocked() TrackingState {
	snap := e.state.clone()
	if e.segments != nil {
		segState := e.segments.State()
		snap.Segments = &segState
	}
	return snap
}

// publish fans a snapshot out to local observers and, when a hub is wired,
// to remote websocket/redis subscribers. Called without the state mutex held
// so observers may call back into the engine.
func (e *Engine) publish(snap TrackingState) {
	e.obsMu.RLock()
	fns := make([]func(TrackingState), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.obsMu.RUnlock()

	for _, fn := range fns {
		fn(snap.clone())
	}

	if e.hub != nil && snap.SessionID != "" {
		if payload, err := json.Marshal(snap); err == nil {
			e.hub.Broadcast(snap.SessionID, payload)
		}
	}
}

func dispatchAlerts(cb func(segment.Alert), alerts []segment.Alert) {
	if cb == nil {
		return
	}
	for _, a := range alerts {
		cb(a)
	}
}
