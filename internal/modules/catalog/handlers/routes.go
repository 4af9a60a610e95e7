package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers catalog routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.HandleLibrary)
		r.Get("/embed", h.HandleEmbed)
		r.Get("/{category}/videos", h.HandleListVideos)
		r.Post("/{category}/videos", h.HandleAddVideo)
	})
}
