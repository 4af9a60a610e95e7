package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAnalyze(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(zerolog.Nop()).RegisterRoutes(router)

	req := httptest.NewRequest("POST", "/budget/analyze", strings.NewReader(`{"savings": 2000}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Savings     float64 `json:"savings"`
		Unallocated float64 `json:"unallocated"`
		Suggestions []struct {
			Title  string  `json:"title"`
			Amount float64 `json:"amount"`
		} `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	require.Len(t, response.Suggestions, 3)
	assert.Equal(t, "Emergency Fund", response.Suggestions[0].Title)
	assert.InDelta(t, 600.0, response.Suggestions[0].Amount, 1e-9)
	assert.InDelta(t, 800.0, response.Suggestions[1].Amount, 1e-9)
	assert.InDelta(t, 400.0, response.Suggestions[2].Amount, 1e-9)
	assert.InDelta(t, 200.0, response.Unallocated, 1e-9)
}

func TestHandleAnalyze_Invalid(t *testing.T) {
	router := chi.NewRouter()
	NewHandler(zerolog.Nop()).RegisterRoutes(router)

	for _, body := range []string{`{"savings": 0}`, `{"savings": -10}`, `{}`, `{`} {
		req := httptest.NewRequest("POST", "/budget/analyze", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
