// Package handlers provides HTTP handlers for the video catalog.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles catalog requests
type Handler struct {
	service *catalog.Service
	log     zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(service *catalog.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "catalog").Logger(),
	}
}

type addVideoRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HandleLibrary returns every category with its videos
func (h *Handler) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	shelves, err := h.service.Library(r.Context())
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), "failed to fetch videos")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"categories": shelves})
}

// HandleListVideos returns the videos of one category
func (h *Handler) HandleListVideos(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	videos, err := h.service.ListVideos(r.Context(), category)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), "failed to fetch videos")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"category": catalog.NormalizeCategory(category),
		"videos":   videos,
		"count":    len(videos),
	})
}

// HandleAddVideo upserts a video into a category
func (h *Handler) HandleAddVideo(w http.ResponseWriter, r *http.Request) {
	var req addVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	video, err := h.service.AddVideo(r.Context(), chi.URLParam(r, "category"), req.Title, req.URL)
	if err != nil {
		h.writeError(w, domain.HTTPStatus(err), domain.PublicMessage(err))
		return
	}

	h.writeJSON(w, http.StatusCreated, video)
}

// HandleEmbed resolves a video URL to its embeddable form
func (h *Handler) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		h.writeError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	id, ok := catalog.ExtractVideoID(raw)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"url":        raw,
		"video_id":   id,
		"recognized": ok,
		"embed_url":  catalog.EmbedURL(raw),
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
