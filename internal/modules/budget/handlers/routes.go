package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers budget routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/budget", func(r chi.Router) {
		r.Post("/analyze", h.HandleAnalyze)
	})
}
