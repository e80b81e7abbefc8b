package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/nits-community-backend/internal/middleware"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/go-chi/chi/v5"
)

type SetProfileRequest struct {
	Avatar string `json:"avatar"`
}

type SetProfileResponse struct {
	OK      bool            `json:"ok"`
	Profile *models.Profile `json:"profile,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// GetProfileResponse always carries the profile key, null when absent.
type GetProfileResponse struct {
	Profile *models.Profile `json:"profile"`
}

// SetProfile handles POST /api/profile
func (h *Handler) SetProfile(w http.ResponseWriter, r *http.Request) {
	var req SetProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	profile, err := h.Profiles.SetAvatar(ctx, middleware.IdentityFrom(r.Context()), req.Avatar)
	if err != nil {
		slog.Error("set profile failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, SetProfileResponse{OK: false, Error: "Could not save profile"})
		return
	}

	writeJSON(w, http.StatusOK, SetProfileResponse{OK: true, Profile: &profile})
}

// GetProfile handles GET /api/profile/{name}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	profile, err := h.Profiles.GetProfile(ctx, chi.URLParam(r, "name"))
	if err != nil {
		slog.Error("get profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, GetProfileResponse{Profile: profile})
}
