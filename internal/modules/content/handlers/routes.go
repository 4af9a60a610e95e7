package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all learning content routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/content", func(r chi.Router) {
		r.Route("/funds", func(r chi.Router) {
			r.Get("/", h.HandleListFunds)
			r.Get("/{id}", h.HandleGetFund)
			r.Get("/{id}/performance", h.HandlePerformance)
			r.Post("/{id}/invest", h.HandleInvest)
		})

		r.Get("/insurance", h.HandleInsurance)
		r.Get("/gold", h.HandleGold)
		r.Get("/stocks", h.HandleStocks)
		r.Get("/lessons", h.HandleLessonCategories)
		r.Get("/lessons/{category}", h.HandleLessons)
	})
}
