package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/AnshRaj112/moodlog-backend/internal/services"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	sessionTokenKey
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequestToken returns the session token of r. Browser WebSocket clients cannot set
// headers, so the token query parameter is accepted as a fallback.
func RequestToken(r *http.Request) string {
	if token := BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// RequireSession rejects requests without a valid session and stores the
// authenticated user id in the request context. Every accepted request restarts
// the session TTL, so only idle sessions expire.
func RequireSession(sessions services.SessionStore, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := RequestToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, ok, err := sessions.Validate(r.Context(), token)
			if err != nil {
				log.Error().Err(err).Msg("session lookup failed")
				writeError(w, http.StatusServiceUnavailable, "Session service unavailable")
				return
			}
			if !ok {
				writeError(w, http.StatusUnauthorized, "Invalid or expired session")
				return
			}
			if err := sessions.Refresh(r.Context(), token); err != nil {
				log.Warn().Err(err).Str("user_id", userID).Msg("session refresh failed")
			}

			ctx := WithUserID(r.Context(), userID)
			ctx = context.WithValue(ctx, sessionTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id stored by RequireSession.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// SessionTokenFromContext returns the session token stored by RequireSession.
func SessionTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey).(string)
	return token
}
