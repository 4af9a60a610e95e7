package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finlit/finlit/internal/clients/gemini"
	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/modules/chat"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.reply, g.err
}

func setup(gen chat.TextGenerator) *chi.Mux {
	relay := chat.NewRelay(gen, chat.Config{}, nil, zerolog.Nop())
	router := chi.NewRouter()
	NewHandler(relay, zerolog.Nop()).RegisterRoutes(router)
	return router
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func start(t *testing.T, router http.Handler) chat.Transcript {
	t.Helper()
	w := do(router, "POST", "/chat/conversations", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var transcript chat.Transcript
	require.NoError(t, json.NewDecoder(w.Body).Decode(&transcript))
	return transcript
}

func TestConversationFlow(t *testing.T) {
	router := setup(stubGenerator{reply: "Diversify your savings."})
	transcript := start(t, router)
	require.Len(t, transcript.Messages, 1)
	assert.Equal(t, chat.Greeting, transcript.Messages[0].Text)

	w := do(router, "POST", "/chat/conversations/"+transcript.ID+"/messages", `{"text":"How do I start?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Reply chat.Message `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Diversify your savings.", resp.Reply.Text)

	w = do(router, "GET", "/chat/conversations/"+transcript.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&transcript))
	assert.Len(t, transcript.Messages, 3)

	w = do(router, "DELETE", "/chat/conversations/"+transcript.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(router, "GET", "/chat/conversations/"+transcript.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendMessage_GeneratorFailure(t *testing.T) {
	router := setup(stubGenerator{err: fmt.Errorf("upstream: %w", domain.ErrFetch)})
	transcript := start(t, router)

	w := do(router, "POST", "/chat/conversations/"+transcript.ID+"/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp struct {
		Reply chat.Message `json:"reply"`
		Error string       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, chat.Apology, resp.Reply.Text)
	assert.NotEmpty(t, resp.Error)
}

func TestSendMessage_UnreachableGeneratorHidesKey(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	upstream.Close()

	router := setup(gemini.NewClient(upstream.URL, "gemini-pro", "SECRET-API-KEY-123", zerolog.Nop()))
	transcript := start(t, router)

	w := do(router, "POST", "/chat/conversations/"+transcript.ID+"/messages", `{"text":"hi"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "SECRET-API-KEY-123")

	var resp struct {
		Reply chat.Message `json:"reply"`
		Error string       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, chat.Apology, resp.Reply.Text)
	assert.Equal(t, "upstream service unavailable", resp.Error)
}

func TestSendMessage_BadRequests(t *testing.T) {
	router := setup(stubGenerator{reply: "ok"})
	transcript := start(t, router)

	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{"blank text", "/chat/conversations/" + transcript.ID + "/messages", `{"text":"  "}`, http.StatusBadRequest},
		{"bad json", "/chat/conversations/" + transcript.ID + "/messages", `{`, http.StatusBadRequest},
		{"unknown conversation", "/chat/conversations/nope/messages", `{"text":"hi"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, "POST", tt.path, tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
