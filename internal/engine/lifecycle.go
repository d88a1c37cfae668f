package engine

import (
	"context"
	"log"
	"sync"

	"backend-evolveai/internal/gps"
)

// BackgroundGrant represents the platform permission that keeps location
// delivery alive while the app is not foregrounded.
type BackgroundGrant interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// resources owns everything acquired on entry to tracking. Release is
// idempotent and never propagates a failure: a broken teardown must not block
// a stop or discard.
type resources struct {
	stream       gps.Stream
	cancel       context.CancelFunc
	grantRelease func()
	once         sync.Once
}

func (r *resources) release() {
	r.once.Do(func() {
		if r.cancel != nil {
			r.cancel()
		}
		if r.stream != nil {
			safeRelease("location stream", r.stream.Stop)
		}
		if r.grantRelease != nil {
			safeRelease("background grant", r.grantRelease)
		}
	})
}

func safeRelease(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("release %s failed: %v", name, rec)
		}
	}()
	fn()
}
