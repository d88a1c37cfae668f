package engine

import "errors"

var (
	// ErrLocationDisabled is returned when location services are off or
	// permission is missing; fatal to starting, never to a running session.
	ErrLocationDisabled = errors.New("location services disabled")

	// ErrSessionActive rejects starting while a different session is active.
	ErrSessionActive = errors.New("another session is already active")

	// ErrSessionFinalizing rejects starting while a stop is being finalized
	// or the summary has not been cleared.
	ErrSessionFinalizing = errors.New("session is finalizing")

	// ErrNoActiveSession rejects operations that need a live session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrNotTracking rejects a manual pause outside the tracking state.
	ErrNotTracking = errors.New("session is not tracking")

	// ErrNotPaused rejects a resume outside the paused states.
	ErrNotPaused = errors.New("session is not paused")

	// ErrNoSegments rejects segment operations on free-form sessions.
	ErrNoSegments = errors.New("session has no segment plan")
)
