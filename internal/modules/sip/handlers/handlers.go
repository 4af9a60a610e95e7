// Package handlers provides HTTP handlers for the SIP calculator.
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/sip"
	"github.com/rs/zerolog"
)

// Handler handles SIP calculator requests
type Handler struct {
	now func() time.Time
	log zerolog.Logger
}

// NewHandler creates a new SIP handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		now: time.Now,
		log: log.With().Str("handler", "sip").Logger(),
	}
}

type calculateRequest struct {
	Monthly float64 `json:"monthly"`
	Years   int     `json:"years"`
	Rate    float64 `json:"rate"`
}

type calculateResponse struct {
	sip.Projection
	Summary string `json:"summary"`
}

// HandleCalculate returns the rounded projection and yearly series
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	proj, ok := h.project(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Projection: proj.Display(),
		Summary:    proj.Summary(),
	})
}

// HandleReport returns the projection as a PDF document
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	proj, ok := h.project(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := sip.RenderReport(&buf, proj, h.now()); err != nil {
		h.log.Error().Err(err).Msg("Failed to render SIP report")
		h.writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="sip-%d-years.pdf"`, proj.Plan.Years))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.log.Error().Err(err).Msg("Failed to write SIP report")
	}
}

func (h *Handler) project(w http.ResponseWriter, r *http.Request) (*sip.Projection, bool) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	proj, err := sip.Calculate(sip.Plan{Monthly: req.Monthly, Years: req.Years, AnnualRate: req.Rate})
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return nil, false
	}

	h.log.Debug().
		Float64("monthly", req.Monthly).
		Int("years", req.Years).
		Float64("rate", req.Rate).
		Float64("total", proj.Terminal).
		Msg("SIP calculated")

	return proj, true
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
