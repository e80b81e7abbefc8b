package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/AnshRaj112/nits-community-backend/internal/services"
)

const (
	storeTimeout  = 5 * time.Second
	uploadTimeout = 60 * time.Second

	// JSON bodies share the per-file upload cap.
	maxJSONBody = services.MaxUploadFileSize
)

// Handler carries the services every route needs.
type Handler struct {
	Posts    *services.PostService
	Profiles *services.ProfileService
	Uploads  *services.UploadGateway
	Gate     *services.IdentityGate
	Feed     *services.FeedHub
}

// OKResponse is the envelope used by mutating routes.
type OKResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, OKResponse{OK: false, Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
