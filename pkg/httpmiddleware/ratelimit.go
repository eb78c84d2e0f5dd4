package httpmiddleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	// Requests allowed per window.
	Requests int
	// Window length.
	Window time.Duration
	// CleanupInterval controls how often idle clients are evicted.
	CleanupInterval time.Duration
}

// DefaultRateLimitConfig allows 100 requests per minute per client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Requests:        100,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

type clientWindow struct {
	count    int
	windowAt time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	cfg     RateLimitConfig
	lastGC  time.Time
}

// allow reports whether the client identified by key may proceed. It uses a
// fixed window per client, which is sufficient for abuse protection on a
// single instance.
func (l *rateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.cfg.CleanupInterval {
		for k, c := range l.clients {
			if now.Sub(c.windowAt) > l.cfg.Window {
				delete(l.clients, k)
			}
		}
		l.lastGC = now
	}

	c, ok := l.clients[key]
	if !ok || now.Sub(c.windowAt) > l.cfg.Window {
		l.clients[key] = &clientWindow{count: 1, windowAt: now}
		return true
	}
	if c.count >= l.cfg.Requests {
		return false
	}
	c.count++
	return true
}

// RateLimit returns a middleware that limits requests per client IP and
// responds with 429 Too Many Requests when the limit is exceeded.
func RateLimit(cfg RateLimitConfig) Middleware {
	l := &rateLimiter{
		clients: make(map[string]*clientWindow),
		cfg:     cfg,
		lastGC:  time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				key = r.RemoteAddr
			}

			if !l.allow(key, time.Now()) {
				w.Header().Set("Retry-After", cfg.Window.String())
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
