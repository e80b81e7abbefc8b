package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/nits-community-backend/internal/middleware"
	"github.com/AnshRaj112/nits-community-backend/internal/models"
	"github.com/AnshRaj112/nits-community-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// CreatePostRequest is the body of POST /api/posts
type CreatePostRequest struct {
	Type      string         `json:"type"`
	Title     string         `json:"title,omitempty"`
	Body      string         `json:"body"`
	Media     []models.Media `json:"media"`
	Anonymous bool           `json:"anonymous"`
}

type CreatePostResponse struct {
	OK   bool         `json:"ok"`
	Post *models.Post `json:"post,omitempty"`
}

type GetPostsResponse struct {
	Posts []models.Post `json:"posts"`
}

type LikePostResponse struct {
	OK    bool   `json:"ok"`
	Likes int    `json:"likes,omitempty"`
	Error string `json:"error,omitempty"`
}

// CreatePost handles POST /api/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	post, err := h.Posts.Create(ctx, middleware.IdentityFrom(r.Context()), services.CreatePostInput{
		Type:      req.Type,
		Title:     req.Title,
		Body:      req.Body,
		Media:     req.Media,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		slog.Error("create post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, CreatePostResponse{OK: true, Post: &post})
}

// GetPosts handles GET /api/posts?type=&q=
func (h *Handler) GetPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	posts, err := h.Posts.List(ctx, services.ListFilter{
		Type:  r.URL.Query().Get("type"),
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, GetPostsResponse{Posts: posts})
}

// LikePost handles POST /api/posts/{id}/like. A repeat like is a soft
// failure: 200 with ok=false.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	likes, err := h.Posts.Like(ctx, middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, LikePostResponse{OK: true, Likes: likes})
	case errors.Is(err, services.ErrAlreadyLiked):
		writeJSON(w, http.StatusOK, LikePostResponse{OK: false, Error: "Already liked"})
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	default:
		slog.Error("like failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// DeletePost handles DELETE /api/posts/{id}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	err := h.Posts.Delete(ctx, middleware.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, OKResponse{OK: true})
	case errors.Is(err, services.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Unauthorized")
	default:
		slog.Error("delete failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}
