package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused per-user bucket is kept.
const idleLimiterTTL = 10 * time.Minute

// RateLimiter is a per-user token bucket for chat updates.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*userLimiter
	limit    rate.Limit
	burst    int
	stop     chan struct{}
	stopOnce sync.Once
}

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute events per user, in bursts of up to
// perMinute. A non-positive perMinute disables limiting. Idle buckets are
// dropped every cleanupInterval; call Stop on shutdown.
func NewRateLimiter(perMinute int, cleanupInterval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[int64]*userLimiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		stop:     make(chan struct{}),
	}
	if perMinute <= 0 {
		rl.limit = rate.Inf
	}
	go rl.cleanup(cleanupInterval)
	return rl
}

// Allow reports whether userID may send another event now.
func (rl *RateLimiter) Allow(userID int64) bool {
	if rl.limit == rate.Inf {
		return true
	}

	now := time.Now()
	rl.mu.Lock()
	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{lim: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastSeen = now
	rl.mu.Unlock()

	return ul.lim.AllowN(now, 1)
}

// Len returns the number of tracked users.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for id, ul := range rl.limiters {
		if now.Sub(ul.lastSeen) > idleLimiterTTL {
			delete(rl.limiters, id)
		}
	}
}
