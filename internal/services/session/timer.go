package session

import (
	"sync"
	"time"

	"github.com/mcoot/typerace/internal/dependencies/clock"
)

// roundTimer fires a callback once after the round duration.
// Stop and the firing path are mutually exclusive: after a successful Stop
// the callback never runs.
type roundTimer struct {
	mu      sync.Mutex
	timer   clock.Timer
	stopped bool
}

func startRoundTimer(clk clock.Clock, d time.Duration, onExpire func()) *roundTimer {
	rt := &roundTimer{}
	rt.timer = clk.AfterFunc(d, func() {
		rt.mu.Lock()
		if rt.stopped {
			rt.mu.Unlock()
			return
		}
		rt.stopped = true
		rt.mu.Unlock()

		onExpire()
	})
	return rt
}

// Stop cancels the timer. It returns false if the timer already fired or
// was stopped before.
func (rt *roundTimer) Stop() bool {
	rt.mu.Lock()
	if rt.stopped {
		rt.mu.Unlock()
		return false
	}
	rt.stopped = true
	rt.mu.Unlock()

	if rt.timer != nil {
		rt.timer.Stop()
	}
	return true
}
