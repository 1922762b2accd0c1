package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gookit/validate"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/moodlog-backend/internal/auth"
	"github.com/AnshRaj112/moodlog-backend/internal/journal"
	"github.com/AnshRaj112/moodlog-backend/internal/middleware"
	"github.com/AnshRaj112/moodlog-backend/internal/services"
	"github.com/AnshRaj112/moodlog-backend/internal/store"
)

const requestTimeout = 5 * time.Second

// IdentityVerifier validates identity-provider tokens presented at sign-in.
type IdentityVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Deps are the collaborators of the HTTP handlers. Photos may be nil when uploads
// are not configured.
type Deps struct {
	Entries        store.EntryStore
	Feed           store.ChangeFeed
	Users          store.UserStore
	Sessions       services.SessionStore
	StatsCache     services.StatsCache
	Photos         services.PhotoUploader
	Verifier       IdentityVerifier
	Location       *time.Location
	Clock          func() time.Time
	Log            zerolog.Logger
	AllowedOrigins []string
}

type Handler struct {
	deps     Deps
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func New(deps Deps) *Handler {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	h := &Handler{
		deps: deps,
		log:  deps.Log.With().Str("component", "handlers").Logger(),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// now is the handler clock in the configured journal time zone.
func (h *Handler) now() time.Time {
	return h.deps.Clock().In(h.deps.Location)
}

// Response is the envelope every JSON reply carries.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// writeJournalError maps journal errors to HTTP statuses.
func writeJournalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, journal.ErrInvalidEntry):
		writeError(w, http.StatusBadRequest, "Invalid journal entry")
	case errors.Is(err, journal.ErrNotFound):
		writeError(w, http.StatusNotFound, "Journal entry not found")
	case errors.Is(err, journal.ErrNoUser), errors.Is(err, journal.ErrSessionClosed):
		writeError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, journal.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Journal storage is temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	v := validate.Struct(dst)
	if !v.Validate() {
		writeError(w, http.StatusBadRequest, v.Errors.One())
		return false
	}
	return true
}

// journalSession opens the caller's journal handle. The caller must Close it.
func (h *Handler) journalSession(w http.ResponseWriter, r *http.Request) (*journal.Session, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	s, err := journal.NewSession(userID, h.deps.Entries, h.deps.Feed,
		journal.WithClock(h.now),
		journal.WithLogger(h.deps.Log),
	)
	if err != nil {
		writeJournalError(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("OK"))
}
