package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/moodlog-backend/internal/middleware"
	"github.com/AnshRaj112/moodlog-backend/internal/store"
)

type LoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
	UserID  string `json:"user_id,omitempty"`
}

// Login exchanges an identity-provider token for a session token. Each sign-in gets
// its own session; other devices of the user stay signed in.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	identity, err := h.deps.Verifier.Verify(req.IDToken)
	if err != nil {
		h.log.Debug().Err(err).Msg("identity token rejected")
		writeError(w, http.StatusUnauthorized, "Invalid identity token")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	token, err := h.deps.Sessions.Create(ctx, identity.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.UserID).Msg("failed to create session")
		writeError(w, http.StatusServiceUnavailable, "Failed to create session")
		return
	}

	if h.deps.Users != nil && identity.DisplayName != "" {
		_, err := h.deps.Users.GetProfile(ctx, identity.UserID)
		if errors.Is(err, store.ErrNotFound) {
			profile := newProfile(identity.DisplayName, h.now())
			if err := h.deps.Users.SaveProfile(ctx, identity.UserID, profile); err != nil {
				h.log.Warn().Err(err).Str("user_id", identity.UserID).Msg("failed to seed profile")
			}
		}
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Signed in",
		Token:   token,
		UserID:  identity.UserID,
	})
}

// Logout ends the session the request was authenticated with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionTokenFromContext(r.Context())

	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.deps.Sessions.Invalidate(ctx, token); err != nil {
		h.log.Error().Err(err).Msg("failed to invalidate session")
		writeError(w, http.StatusServiceUnavailable, "Failed to sign out")
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Signed out"})
}
