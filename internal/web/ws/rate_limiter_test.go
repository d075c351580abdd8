package ws

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/typerace/internal/dependencies/mocks"
)

func TestRateLimiterBurstThenRefill(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rl := newRateLimiter(3, time.Second, clk)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow(), "message %d within burst", i)
	}
	assert.False(t, rl.allow())

	clk.Advance(time.Second / 3)
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestRateLimiterRefillsWholeBurstAfterInterval(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rl := newRateLimiter(3, time.Second, clk)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow())
	}
	assert.False(t, rl.allow())

	clk.Advance(time.Second)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow(), "message %d after refill", i)
	}
	assert.False(t, rl.allow())
}

func TestRateLimiterPartialPeriodDoesNotRefill(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rl := newRateLimiter(1, time.Second, clk)

	assert.True(t, rl.allow())
	clk.Advance(time.Second - time.Nanosecond)
	assert.False(t, rl.allow())
	clk.Advance(time.Nanosecond)
	assert.True(t, rl.allow())
}

func TestRateLimiterCapsAtCapacity(t *testing.T) {
	clk := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	rl := newRateLimiter(2, time.Second, clk)

	clk.Advance(time.Hour)
	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}

func TestRateLimiterDefaults(t *testing.T) {
	clk := mocks.NewMockClock(time.Now())
	rl := newRateLimiter(0, 0, clk)

	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}
