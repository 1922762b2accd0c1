package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/AnshRaj112/moodlog-backend/pkg/clientip"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// Limiter hands out one token bucket per key (client IP or user id). Buckets idle
// for longer than 30 minutes are dropped by Sweep.
type Limiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*limiterEntry
}

func NewLimiter(limit rate.Limit, burst int) *Limiter {
	return &Limiter{
		limit:   limit,
		burst:   burst,
		now:     time.Now,
		entries: make(map[string]*limiterEntry),
	}
}

// Allow reports whether one more request for key fits in its bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = now
	return e.limiter.AllowN(now, 1)
}

// Sweep drops buckets that have not been used for limiterTTL and returns how many
// remain.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(l.entries, key)
		}
	}
	return len(l.entries)
}

// Run sweeps periodically until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

func (l *Limiter) Burst() int { return l.burst }

// GlobalRateLimit limits each client IP. Returns 429 when exceeded.
func GlobalRateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimit applies a stricter per-IP limit to sign-in only. Use after GlobalRateLimit.
func LoginRateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/session" {
				next.ServeHTTP(w, r)
				return
			}
			if !l.Allow(clientip.RealClientIP(r)) {
				writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteRateLimit limits entry writes per authenticated user. Reads pass through.
// Must run after RequireSession.
func WriteRateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			key := clientip.RealClientIP(r)
			if userID, ok := UserIDFromContext(r.Context()); ok {
				key = "user:" + userID
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Burst()))
			if !l.Allow(key) {
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeError(w, http.StatusTooManyRequests, "Too many changes. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
