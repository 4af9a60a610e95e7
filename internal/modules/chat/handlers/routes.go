package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all chat routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/chat/conversations", func(r chi.Router) {
		r.Post("/", h.HandleStart)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Delete("/", h.HandleDelete)
			r.Post("/messages", h.HandleSendMessage)
		})
	})
}
