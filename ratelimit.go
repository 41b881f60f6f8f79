package route

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RateLimit decoration.
type RateLimitConfig struct {
	Rate            float64                   // requests per second
	Burst           int                       // max burst
	KeyFunc         func(r *Request) string   // default: remote IP
	OnLimit         func(r *Request) Response // default: 429 problem
	CleanupInterval time.Duration             // how often to prune idle limiters (default: 1m)
	MaxIdle         time.Duration             // remove limiters idle longer than this (default: 5m)
	Now             func() time.Time          // default: time.Now
}

// RateLimit returns a decoration that applies per-key rate limiting. Limited
// requests get a 429 with a Retry-After header.
func RateLimit(cfg RateLimitConfig) Decoration {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(r *Request) string {
			addr := r.RemoteAddr()
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return addr
			}
			return host
		}
	}
	if cfg.OnLimit == nil {
		cfg.OnLimit = func(*Request) Response {
			return Fail(http.StatusTooManyRequests, Problem(http.StatusTooManyRequests, "rate limit exceeded"))
		}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	maxIdle := cfg.MaxIdle
	if maxIdle <= 0 {
		maxIdle = 5 * time.Minute
	}
	retryAfter := "1"
	if cfg.Rate > 0 {
		retryAfter = strconv.FormatFloat(math.Ceil(1/cfg.Rate), 'f', 0, 64)
	}

	var (
		mu          sync.Mutex
		limiters    = make(map[string]*limiterEntry)
		lastCleanup time.Time
	)

	return func(r *Request, next Next) (Response, error) {
		key := cfg.KeyFunc(r)

		mu.Lock()
		now := cfg.Now()

		// Lazy cleanup of expired limiters.
		if now.Sub(lastCleanup) >= cleanupInterval {
			for k, e := range limiters {
				if now.Sub(e.lastSeen) > maxIdle {
					delete(limiters, k)
				}
			}
			lastCleanup = now
		}

		entry, ok := limiters[key]
		if !ok {
			entry = &limiterEntry{
				limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
			}
			limiters[key] = entry
		}
		entry.lastSeen = now
		mu.Unlock()

		if !entry.limiter.AllowN(now, 1) {
			return cfg.OnLimit(r).WithHeader("Retry-After", retryAfter), nil
		}
		return next()
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}
