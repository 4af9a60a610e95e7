// Package handlers provides HTTP handlers for the chat assistant.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/chat"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles chat requests
type Handler struct {
	relay *chat.Relay
	log   zerolog.Logger
}

// NewHandler creates a new chat handler
func NewHandler(relay *chat.Relay, log zerolog.Logger) *Handler {
	return &Handler{
		relay: relay,
		log:   log.With().Str("handler", "chat").Logger(),
	}
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Reply *chat.Message `json:"reply"`
	Error string        `json:"error,omitempty"`
}

// HandleStart opens a conversation
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusCreated, h.relay.Start())
}

// HandleGet returns a conversation transcript
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.relay.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, transcript)
}

// HandleDelete closes a conversation
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.relay.Delete(chi.URLParam(r, "id")); err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleSendMessage relays a question and returns the assistant reply.
// A failed generation still returns the apology so clients can render it.
func (h *Handler) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := h.relay.SendMessage(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		if reply == nil {
			h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
			return
		}
		status := domain.HTTPStatus(err)
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.writeJSON(w, status, messageResponse{Reply: reply, Error: domain.PublicMessage(err)})
		return
	}

	h.writeJSON(w, http.StatusOK, messageResponse{Reply: reply})
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
