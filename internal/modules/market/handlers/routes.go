package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trading game routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/market/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGetSession)
			r.Delete("/", h.HandleDeleteSession)
			r.Post("/buy", h.HandleBuy)
			r.Post("/sell", h.HandleSell)
			r.Post("/advance", h.HandleAdvance)
			r.Get("/indicators/{instrumentID}", h.HandleIndicators)
			r.Get("/ws", h.HandleStream)
		})
	})
}
