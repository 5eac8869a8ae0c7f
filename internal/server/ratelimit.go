package server

import (
	"fmt"
	"sync"
	"time"
)

// window is a fixed counting window.
type window struct {
	start time.Time
	count int
}

func (w *window) roll(now time.Time, size time.Duration) {
	if now.Sub(w.start) >= size {
		w.start = now.Truncate(size)
		w.count = 0
	}
}

type clientUsage struct {
	minute    window
	hour      window
	day       window
	dataToday int64
}

// RateLimiter counts requests per client in fixed minute, hour and day
// windows and tracks uploaded bytes per day.
type RateLimiter struct {
	mu      sync.Mutex
	cfg     RateLimitConfig
	clients map[string]*clientUsage
	now     func() time.Time
}

// NewRateLimiter creates a limiter with cfg's limits.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{cfg: cfg, clients: make(map[string]*clientUsage), now: time.Now}
}

// Allow records a request of dataSize bytes from client, or returns a
// *RateLimitError / *QuotaExceededError without recording it.
func (rl *RateLimiter) Allow(client string, dataSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u, ok := rl.clients[client]
	if !ok {
		u = &clientUsage{}
		rl.clients[client] = u
	}
	u.minute.roll(now, time.Minute)
	u.hour.roll(now, time.Hour)
	if now.Sub(u.day.start) >= 24*time.Hour {
		u.day.start = now.Truncate(24 * time.Hour)
		u.day.count = 0
		u.dataToday = 0
	}

	if lim := rl.cfg.RequestsPerMinute; lim > 0 && u.minute.count >= lim {
		return &RateLimitError{Window: "minute", Limit: lim, RetryAfter: u.minute.start.Add(time.Minute).Sub(now)}
	}
	if lim := rl.cfg.RequestsPerHour; lim > 0 && u.hour.count >= lim {
		return &RateLimitError{Window: "hour", Limit: lim, RetryAfter: u.hour.start.Add(time.Hour).Sub(now)}
	}
	resets := u.day.start.Add(24 * time.Hour)
	if lim := rl.cfg.MaxRequestsPerDay; lim > 0 && u.day.count >= lim {
		return &QuotaExceededError{Kind: "requests", Limit: int64(lim), Used: int64(u.day.count), Resets: resets}
	}
	if lim := rl.cfg.MaxDataPerDay; lim > 0 && u.dataToday+dataSize > lim {
		return &QuotaExceededError{Kind: "data", Limit: lim, Used: u.dataToday, Resets: resets}
	}

	u.minute.count++
	u.hour.count++
	u.day.count++
	u.dataToday += dataSize
	return nil
}

// RateLimitError is returned when a window's request count is exhausted.
type RateLimitError struct {
	Window     string
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d requests per %s (retry after %v)", e.Limit, e.Window, e.RetryAfter.Round(time.Second))
}

// QuotaExceededError is returned when a daily quota is exhausted.
type QuotaExceededError struct {
	Kind   string
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Kind, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
