package routes

import (
	"net/http"

	"github.com/AnshRaj112/nits-community-backend/internal/handlers"
	"github.com/AnshRaj112/nits-community-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Public reads
	r.Get("/api/posts", h.GetPosts)
	r.Get("/api/profile/{name}", h.GetProfile)
	r.Post("/api/login", h.Login)

	// Live feed
	r.Get("/ws/feed", h.FeedWebSocket)

	// Routes that need an Authorization label
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireIdentity(h.Gate))

		r.Post("/api/uploads", h.UploadFiles)
		r.Post("/api/profile", h.SetProfile)
		r.Post("/api/posts", h.CreatePost)
		r.Post("/api/posts/{id}/like", h.LikePost)
		r.Delete("/api/posts/{id}", h.DeletePost)
	})
}
