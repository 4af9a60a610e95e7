// Package handlers provides HTTP handlers for the budget advisor.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/budget"
	"github.com/rs/zerolog"
)

// Handler handles budget analysis requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new budget handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "budget").Logger(),
	}
}

type analyzeRequest struct {
	Savings float64 `json:"savings"`
}

type analyzeResponse struct {
	Savings     float64             `json:"savings"`
	Suggestions []budget.Suggestion `json:"suggestions"`
	Unallocated float64             `json:"unallocated"`
}

// HandleAnalyze returns allocation suggestions for monthly savings
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	suggestions, err := budget.Advise(req.Savings)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), "Please enter a valid monthly savings amount")
		return
	}

	h.writeJSON(w, http.StatusOK, analyzeResponse{
		Savings:     req.Savings,
		Suggestions: suggestions,
		Unallocated: budget.Unallocated(req.Savings, suggestions),
	})
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
