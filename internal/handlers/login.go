package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/nits-community-backend/internal/services"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Login handles POST /api/login. It never issues a token; the client sends
// the username as the Authorization label on later calls.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	// A missing or unparsable body is treated as an empty one.
	_ = json.NewDecoder(r.Body).Decode(&req)

	username, role, err := h.Gate.Login(req.Username, req.Password)
	if errors.Is(err, services.ErrUsernameRequired) {
		writeJSON(w, http.StatusBadRequest, LoginResponse{Success: false, Error: "username required"})
		return
	}

	if role == services.RoleAdmin {
		slog.Info("admin login", "username", username)
	}
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, Username: username, Role: role})
}
