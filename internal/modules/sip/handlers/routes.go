package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all SIP routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sip", func(r chi.Router) {
		r.Post("/calculate", h.HandleCalculate)
		r.Post("/report", h.HandleReport)
	})
}
