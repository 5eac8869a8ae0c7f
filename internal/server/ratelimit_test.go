package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limiterAt(cfg RateLimitConfig, now *time.Time) *RateLimiter {
	rl := NewRateLimiter(cfg)
	rl.now = func() time.Time { return *now }
	return rl
}

func TestRateLimiterMinuteWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 10, 0, time.UTC)
	rl := limiterAt(RateLimitConfig{RequestsPerMinute: 2}, &now)

	require.NoError(t, rl.Allow("a", 0))
	require.NoError(t, rl.Allow("a", 0))

	err := rl.Allow("a", 0)
	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "minute", rle.Window)
	assert.Equal(t, 50*time.Second, rle.RetryAfter)

	// other clients are independent
	require.NoError(t, rl.Allow("b", 0))

	now = now.Add(time.Minute)
	assert.NoError(t, rl.Allow("a", 0))
}

func TestRateLimiterHourWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := limiterAt(RateLimitConfig{RequestsPerHour: 2}, &now)

	require.NoError(t, rl.Allow("a", 0))
	now = now.Add(2 * time.Minute)
	require.NoError(t, rl.Allow("a", 0))
	now = now.Add(2 * time.Minute)

	var rle *RateLimitError
	require.ErrorAs(t, rl.Allow("a", 0), &rle)
	assert.Equal(t, "hour", rle.Window)
}

func TestRateLimiterDailyQuotas(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := limiterAt(RateLimitConfig{MaxRequestsPerDay: 5, MaxDataPerDay: 100}, &now)

	require.NoError(t, rl.Allow("a", 60))

	var qe *QuotaExceededError
	require.ErrorAs(t, rl.Allow("a", 60), &qe)
	assert.Equal(t, "data", qe.Kind)
	assert.Equal(t, int64(60), qe.Used)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), qe.Resets)

	// rejected requests are not counted
	require.NoError(t, rl.Allow("a", 40))

	now = now.Add(24 * time.Hour)
	assert.NoError(t, rl.Allow("a", 100))
}

func TestRateLimiterRequestQuota(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := limiterAt(RateLimitConfig{MaxRequestsPerDay: 1}, &now)
	require.NoError(t, rl.Allow("a", 0))

	var qe *QuotaExceededError
	require.ErrorAs(t, rl.Allow("a", 0), &qe)
	assert.Equal(t, "requests", qe.Kind)
	assert.Contains(t, qe.Error(), "quota exceeded for requests")
}
