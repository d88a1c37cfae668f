package engine

import (
	"sync"
	"time"
)

// sessionClock fires onTick at a fixed interval until stopped. The engine
// runs one instance as the 1 Hz session clock and a second, independent one
// for the segment transition countdown.
type sessionClock struct {
	done chan struct{}
	once sync.Once
}

func startClock(interval time.Duration, onTick func()) *sessionClock {
	c := &sessionClock{done: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				onTick()
			case <-c.done:
				return
			}
		}
	}()
	return c
}

// stop halts the clock. Safe to call more than once.
func (c *sessionClock) stop() {
	c.once.Do(func() { close(c.done) })
}
