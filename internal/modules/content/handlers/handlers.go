// Package handlers provides HTTP handlers for the learning content pages.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/content"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles content requests
type Handler struct {
	service *content.Service
	log     zerolog.Logger
}

// NewHandler creates a new content handler
func NewHandler(service *content.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "content").Logger(),
	}
}

type investRequest struct {
	Amount float64 `json:"amount"`
}

// HandleListFunds returns all mutual funds
func (h *Handler) HandleListFunds(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Funds())
}

// HandleGetFund returns a fund with its advice
func (h *Handler) HandleGetFund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.fundID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Fund(id)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// HandlePerformance returns a simulated performance series
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.fundID(w, r)
	if !ok {
		return
	}

	timeframe := content.Timeframe(r.URL.Query().Get("timeframe"))
	perf, err := h.service.Performance(id, timeframe)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, perf)
}

// HandleInvest validates an investment into a fund
func (h *Handler) HandleInvest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.fundID(w, r)
	if !ok {
		return
	}

	var req investRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inv, err := h.service.Invest(id, req.Amount)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, inv)
}

// HandleInsurance returns the insurance plans
func (h *Handler) HandleInsurance(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Insurance())
}

// HandleGold returns the gold tracker report
func (h *Handler) HandleGold(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Gold())
}

// HandleStocks returns the stock market overview
func (h *Handler) HandleStocks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Stocks())
}

// HandleLessonCategories lists lesson categories
func (h *Handler) HandleLessonCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.Categories())
}

// HandleLessons returns the lessons of a category
func (h *Handler) HandleLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.Lessons(chi.URLParam(r, "category"))
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) fundID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid fund id")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
