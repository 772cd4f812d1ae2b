package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket held in process memory.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

// NewMemoryLimiter creates a MemoryLimiter. Idle keys are evicted until ctx is done.
func NewMemoryLimiter(ctx context.Context, rps float64, burst int) *MemoryLimiter {
	rl := &MemoryLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go rl.cleanup(ctx)
	return rl
}

// Allow implements Limiter.
func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return rl.getLimiter(key).Allow(), nil
}

func (rl *MemoryLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		limiter := rate.NewLimiter(rl.rps, rl.burst)
		rl.visitors[key] = &visitor{limiter: limiter, lastSeen: time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *MemoryLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(visitorIdleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle(time.Now())
		}
	}
}

func (rl *MemoryLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(rl.visitors, key)
		}
	}
}

type fallbackLimiter struct {
	primary  Limiter
	fallback Limiter
}

// WithFallback consults primary and switches to fallback for any request
// where primary returns an error.
func WithFallback(primary, fallback Limiter) Limiter {
	return &fallbackLimiter{primary: primary, fallback: fallback}
}

func (l *fallbackLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := l.primary.Allow(ctx, key)
	if err == nil {
		return ok, nil
	}
	slog.Warn("primary rate limiter failed, using fallback", "error", err)
	return l.fallback.Allow(ctx, key)
}

// RateLimit returns middleware that throttles requests per peer address.
// Proxy headers are ignored so clients cannot pick their own bucket.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), remoteIP(r))
			if err != nil {
				slog.Error("rate limiter failed", "path", r.URL.Path, "error", err)
				allowed = true
			}

			if !allowed {
				w.Header().Set("Retry-After", "1")
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
