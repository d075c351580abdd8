package ws

import (
	"sync"
	"time"

	"github.com/mcoot/typerace/internal/dependencies/clock"
)

// rateLimiter is a token bucket refilled continuously at capacity per
// interval. Tokens are kept as accumulated time so a full token period
// always yields a whole token.
type rateLimiter struct {
	clock clock.Clock

	mu        sync.Mutex
	available time.Duration
	perToken  time.Duration
	max       time.Duration
	lastCheck time.Time
}

func newRateLimiter(capacity int, interval time.Duration, clk clock.Clock) *rateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Second
	}

	perToken := interval / time.Duration(capacity)
	if perToken <= 0 {
		perToken = 1
	}
	limit := perToken * time.Duration(capacity)

	return &rateLimiter{
		clock:     clk,
		available: limit,
		perToken:  perToken,
		max:       limit,
		lastCheck: clk.Now(),
	}
}

func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	if elapsed := now.Sub(rl.lastCheck); elapsed > 0 {
		rl.available += elapsed
		if rl.available > rl.max || rl.available < 0 {
			rl.available = rl.max
		}
	}
	rl.lastCheck = now

	if rl.available < rl.perToken {
		return false
	}

	rl.available -= rl.perToken
	return true
}
