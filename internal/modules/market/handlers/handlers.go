// Package handlers provides HTTP and WebSocket handlers for the stock trading game.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/market"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const wsWriteWait = 10 * time.Second

// Handler handles game session requests
type Handler struct {
	sessions *market.Sessions
	log      zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(sessions *market.Sessions, log zerolog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		log:      log.With().Str("handler", "market").Logger(),
	}
}

type buyRequest struct {
	InstrumentID string  `json:"instrument_id"`
	Amount       float64 `json:"amount"`
}

type sellRequest struct {
	InstrumentID string `json:"instrument_id"`
}

// HandleCreateSession starts a new game
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Create(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create game session")
		h.writeError(w, domain.HTTPStatus(err), "failed to create session")
		return
	}

	h.writeJSON(w, http.StatusCreated, view)
}

// HandleGetSession returns the session state
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

// HandleDeleteSession ends a game
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleBuy buys whole shares for up to the requested amount
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trade, view, err := h.sessions.Buy(r.Context(), chi.URLParam(r, "id"), req.InstrumentID, req.Amount)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"trade":   trade,
		"session": view,
	})
}

// HandleSell sells the whole position in an instrument
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sale, view, err := h.sessions.Sell(r.Context(), chi.URLParam(r, "id"), req.InstrumentID)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"sale":    sale,
		"session": view,
	})
}

// HandleAdvance simulates one market day
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	report, view, err := h.sessions.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"report":  report,
		"session": view,
	})
}

// HandleIndicators returns SMA/RSI readings for an instrument
func (h *Handler) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	ind, err := h.sessions.Indicators(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "instrumentID"))
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusOK, ind)
}

// HandleStream pushes the session state over a WebSocket after every change
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Subscribe before upgrading so unknown sessions get a plain HTTP error
	updates, cancel, err := h.sessions.Subscribe(r.Context(), id)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}
	defer cancel()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn().Err(err).Str("session_id", id).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream ended")

	h.log.Debug().Str("session_id", id).Msg("Client subscribed to session stream")

	// Client messages are ignored; CloseRead cancels ctx when the client goes away
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case view, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "session ended")
				return
			}
			if err := h.writeFrame(ctx, conn, view); err != nil {
				h.log.Debug().Err(err).Str("session_id", id).Msg("Session stream write failed")
				return
			}
		}
	}
}

func (h *Handler) writeFrame(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, wsWriteWait)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
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
