package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/moodlog-backend/internal/auth"
	"github.com/AnshRaj112/moodlog-backend/internal/handlers"
	"github.com/AnshRaj112/moodlog-backend/internal/middleware"
	"github.com/AnshRaj112/moodlog-backend/internal/services"
	"github.com/AnshRaj112/moodlog-backend/internal/store"
)

func newRouter(t *testing.T, opts Options) (http.Handler, *services.MemorySessions) {
	t.Helper()
	mem := store.NewMemory()
	sessions := services.NewMemorySessions(time.Hour)
	opts.Handler = handlers.New(handlers.Deps{
		Entries:    mem,
		Feed:       mem,
		Users:      mem,
		Sessions:   sessions,
		StatsCache: services.NewMemoryStatsCache(0),
		Verifier:   auth.NewVerifier("secret", ""),
		Log:        zerolog.Nop(),
	})
	opts.Sessions = sessions
	opts.Log = zerolog.Nop()
	if opts.AllowedOrigins == nil {
		opts.AllowedOrigins = []string{"http://localhost:3000"}
	}
	return New(opts), sessions
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := newRouter(t, Options{MetricsEnabled: true})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "moodlog_")
}

func TestMetricsDisabled(t *testing.T) {
	r, _ := newRouter(t, Options{})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}

func TestProtectedRoutes(t *testing.T) {
	r, sessions := newRouter(t, Options{})

	for _, path := range []string{"/api/entries", "/api/stats", "/api/settings", "/api/profile", "/ws/entries"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	token, err := sessions.Create(context.Background(), "u1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":0`)
}

func TestPreflight(t *testing.T) {
	r, _ := newRouter(t, Options{})
	req := httptest.NewRequest(http.MethodOptions, "/api/entries", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteRateLimit(t *testing.T) {
	r, sessions := newRouter(t, Options{WriteLimiter: middleware.NewLimiter(rate.Every(time.Hour), 1)})
	token, err := sessions.Create(context.Background(), "u1")
	require.NoError(t, err)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/entries",
			strings.NewReader(`{"title":"t","content":"c","mood":"happy"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusCreated, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}
