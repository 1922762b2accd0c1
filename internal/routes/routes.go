package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/moodlog-backend/internal/handlers"
	"github.com/AnshRaj112/moodlog-backend/internal/middleware"
	"github.com/AnshRaj112/moodlog-backend/internal/services"
)

// Options wires the router. Nil limiters disable the matching middleware.
type Options struct {
	Handler        *handlers.Handler
	Sessions       services.SessionStore
	Log            zerolog.Logger
	AllowedOrigins []string
	MetricsEnabled bool

	// Production enables SecurityHeaders, HostCheck and the in-process limiters.
	// Outside production the Redis limiter is used when set.
	Production    bool
	AllowedHost   string
	GlobalLimiter *middleware.Limiter
	LoginLimiter  *middleware.Limiter
	WriteLimiter  *middleware.Limiter
	RedisLimiter  *middleware.RedisRateLimiter
}

func New(opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog(opts.Log))
	r.Use(middleware.Metrics)
	// CORS answers preflight before any limiter sees it
	r.Use(middleware.CORS(opts.AllowedOrigins))

	if opts.Production && opts.GlobalLimiter != nil && opts.LoginLimiter != nil {
		for _, mw := range middleware.ProductionSecurity(opts.AllowedHost, opts.GlobalLimiter, opts.LoginLimiter) {
			r.Use(mw)
		}
	} else if opts.RedisLimiter != nil {
		r.Use(opts.RedisLimiter.Middleware)
	}

	// Health check (no auth)
	r.Get("/health", handlers.Health)
	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	SetupRoutes(r, opts)
	r.NotFound(NotFound)
	return r
}

func SetupRoutes(r chi.Router, opts Options) {
	h := opts.Handler

	// Sign-in exchanges an identity-provider token for a session
	r.Post("/api/session", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(opts.Sessions, opts.Log))
		if opts.WriteLimiter != nil {
			r.Use(middleware.WriteRateLimit(opts.WriteLimiter))
		}

		r.Delete("/api/session", h.Logout)

		// Journal entries
		r.Route("/api/entries", func(r chi.Router) {
			r.Get("/", h.ListEntries)
			r.Post("/", h.CreateEntry)
			r.Get("/recent", h.RecentEntries)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		// Statistics
		r.Get("/api/stats", h.GetStats)
		r.Get("/api/calendar", h.GetCalendar)

		// Settings and profile
		r.Get("/api/settings", h.GetSettings)
		r.Put("/api/settings", h.UpdateSettings)
		r.Get("/api/profile", h.GetProfile)
		r.Put("/api/profile", h.UpdateProfile)
		r.Post("/api/profile/photo", h.UploadProfilePhoto)

		// Live snapshots
		r.Get("/ws/entries", h.LiveEntries)
	})
}

// NotFound is the JSON 404 for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"success":false,"message":"Not found"}`))
}
