package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// RateLimiter keeps one token bucket per client IP. With a shared counter
// attached (WithShared), replicas enforce one window together and the
// local buckets only serve as fallback when the counter is unreachable.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	perWindow int
	shared    SharedCounter
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
func NewRateLimiter(perMinute float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		rate:      rate.Limit(perMinute / 60),
		burst:     burst,
		perWindow: int(perMinute),
	}
}

// WithShared attaches a cross-replica counter.
func (rl *RateLimiter) WithShared(c SharedCounter) *RateLimiter {
	rl.shared = c
	return rl
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Cleanup drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for k, e := range rl.limiters {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limiters, k)
			removed++
		}
	}
	return removed
}

// Handler rejects requests over the limit with 429.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := utils.ClientIP(r)
		if key == "" {
			key = r.RemoteAddr
		}
		var allowed bool
		if rl.shared != nil {
			exceeded, err := rl.shared.Exceeded(r.Context(), key, rl.perWindow, time.Minute)
			if err != nil {
				utils.Logger.WithError(err).Warn("Shared rate limit counter unavailable, using local bucket")
				allowed = rl.allow(key, time.Now())
			} else {
				allowed = !exceeded
			}
		} else {
			allowed = rl.allow(key, time.Now())
		}
		if !allowed {
			w.Header().Set("Retry-After", "60")
			utils.RespondErrorWithCode(
				w, http.StatusTooManyRequests, utils.ErrCodeRateLimitExceeded, "Too many requests", nil,
			)
			return
		}
		next.ServeHTTP(w, r)
	})
}
