package middleware

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds token bucket settings applied per caller key.
type RateLimitConfig struct {
	Enabled           bool    `toml:"enabled"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	IdleTTL           string  `toml:"idle_ttl"`
}

// RateLimitEnv maps rate limit config fields to environment variable names.
type RateLimitEnv struct {
	Enabled           string
	RequestsPerSecond string
	Burst             string
	IdleTTL           string
}

// IdleTTLDuration returns IdleTTL as a time.Duration.
func (c *RateLimitConfig) IdleTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTTL)
	return d
}

// Finalize applies defaults and environment variable overrides.
func (c *RateLimitConfig) Finalize(env *RateLimitEnv) error {
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 5
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	if _, err := time.ParseDuration(c.IdleTTL); err != nil {
		c.IdleTTL = "10m"
	}

	if env == nil {
		return nil
	}
	if v := os.Getenv(env.Enabled); env.Enabled != "" && v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Enabled = enabled
		}
	}
	if v := os.Getenv(env.RequestsPerSecond); env.RequestsPerSecond != "" && v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			c.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv(env.Burst); env.Burst != "" && v != "" {
		if burst, err := strconv.Atoi(v); err == nil && burst > 0 {
			c.Burst = burst
		}
	}
	if v := os.Getenv(env.IdleTTL); env.IdleTTL != "" && v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			c.IdleTTL = v
		}
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *RateLimitConfig) Merge(overlay *RateLimitConfig) {
	c.Enabled = overlay.Enabled
	if overlay.RequestsPerSecond > 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst > 0 {
		c.Burst = overlay.Burst
	}
	if overlay.IdleTTL != "" {
		c.IdleTTL = overlay.IdleTTL
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter hands out one token bucket per key.
type KeyedLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	now      func() time.Time
	swept    time.Time
}

// NewKeyedLimiter creates a limiter from the config.
func NewKeyedLimiter(cfg *RateLimitConfig) *KeyedLimiter {
	return &KeyedLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
		idleTTL:  cfg.IdleTTLDuration(),
		now:      time.Now,
	}
}

// Allow consumes a token for key and reports whether one was available.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.idleTTL > 0 && now.Sub(l.swept) >= l.idleTTL {
		l.prune(now)
		l.swept = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// prune drops visitors idle longer than idleTTL. Allow runs it at most once
// per idleTTL, so a visitor lingers for under twice the TTL.
func (l *KeyedLimiter) prune(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, key)
		}
	}
}

// RateLimit returns middleware that rejects requests with 429 once the caller
// identified by keyFn exhausts its bucket. Requests with an empty key fall back
// to the remote address. Passes through when disabled.
func RateLimit(cfg *RateLimitConfig, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	limiter := NewKeyedLimiter(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			key := keyFn(r)
			if key == "" {
				key = r.RemoteAddr
			}

			if !limiter.Allow(key) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
