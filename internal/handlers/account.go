package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/moodlog-backend/internal/middleware"
	"github.com/AnshRaj112/moodlog-backend/internal/models"
	"github.com/AnshRaj112/moodlog-backend/internal/services"
	"github.com/AnshRaj112/moodlog-backend/internal/store"
)

const maxPhotoForm = services.MaxProfilePhotoSize + 1<<20

type UpdateSettingsRequest struct {
	Theme         string `json:"theme" validate:"in:light,dark,system"`
	Notifications *bool  `json:"notifications"`
	Privacy       string `json:"privacy" validate:"in:private,public"`
}

type SettingsResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message,omitempty"`
	Settings models.UserSettings `json:"settings"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required|maxLen:80"`
}

type ProfileResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Profile models.UserProfile `json:"profile"`
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

func newProfile(displayName string, now time.Time) models.UserProfile {
	return models.UserProfile{DisplayName: strings.TrimSpace(displayName), UpdatedAt: now.UTC()}
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return userID, ok
}

// GetSettings returns the caller's settings. First-time users get the defaults,
// which are persisted so later reads are stable.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	settings, err := h.deps.Users.GetSettings(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		settings = models.DefaultUserSettings()
		if err := h.deps.Users.SaveSettings(ctx, userID, settings); err != nil {
			h.log.Warn().Err(err).Str("user_id", userID).Msg("failed to persist default settings")
		}
	case err != nil:
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load settings")
		settings = models.DefaultUserSettings()
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Settings: settings})
}

// UpdateSettings merges the provided fields into the stored settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	settings, err := h.deps.Users.GetSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		settings = models.DefaultUserSettings()
	} else if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load settings")
		writeError(w, http.StatusServiceUnavailable, "Failed to load settings")
		return
	}

	if req.Theme != "" {
		settings.Theme = models.Theme(req.Theme)
	}
	if req.Privacy != "" {
		settings.Privacy = models.Privacy(req.Privacy)
	}
	if req.Notifications != nil {
		settings.Notifications = *req.Notifications
	}

	if err := h.deps.Users.SaveSettings(ctx, userID, settings); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to save settings")
		writeError(w, http.StatusServiceUnavailable, "Failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, SettingsResponse{Success: true, Message: "Settings updated", Settings: settings})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	profile, err := h.deps.Users.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load profile")
		writeError(w, http.StatusServiceUnavailable, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, Profile: profile})
}

// UpdateProfile sets the display name. The stored photo is kept.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, http.StatusBadRequest, "display_name must not be blank")
		return
	}
	ctx, cancel := h.requestContext(r)
	defer cancel()

	current, err := h.deps.Users.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load profile")
		writeError(w, http.StatusServiceUnavailable, "Failed to load profile")
		return
	}

	profile := newProfile(req.DisplayName, h.now())
	profile.PhotoURL = current.PhotoURL
	if err := h.deps.Users.SaveProfile(ctx, userID, profile); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to save profile")
		writeError(w, http.StatusServiceUnavailable, "Failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Success: true, Message: "Profile updated", Profile: profile})
}

// UploadProfilePhoto stores the multipart "file" field as the caller's profile photo.
func (h *Handler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	if h.deps.Photos == nil {
		writeError(w, http.StatusServiceUnavailable, "Photo uploads are not configured")
		return
	}
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPhotoForm)
	if err := r.ParseMultipartForm(maxPhotoForm); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No photo provided")
		return
	}
	file.Close()

	url, err := h.deps.Photos.UploadProfilePhoto(r.Context(), userID, fileHeader)
	switch {
	case errors.Is(err, services.ErrPhotoTooLarge), errors.Is(err, services.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error().Err(err).Str("user_id", userID).Msg("profile photo upload failed")
		writeError(w, http.StatusBadGateway, "Failed to upload photo")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	profile, err := h.deps.Users.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to load profile")
		writeError(w, http.StatusServiceUnavailable, "Failed to load profile")
		return
	}
	profile.PhotoURL = url
	profile.UpdatedAt = h.now().UTC()
	if err := h.deps.Users.SaveProfile(ctx, userID, profile); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("failed to save profile")
		writeError(w, http.StatusServiceUnavailable, "Failed to save profile")
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{Success: true, Message: "Photo uploaded successfully", URL: url})
}
