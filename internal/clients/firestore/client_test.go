package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finlit/finlit/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsPrefix = "/v1/projects/finlit-test/databases/(default)/documents/"

func TestNewClient(t *testing.T) {
	client := NewClient("", "p", "", zerolog.Nop())
	assert.Equal(t, defaultBaseURL, client.baseURL)

	client = NewClient("http://localhost:8080/", "p", "k", zerolog.Nop())
	assert.Equal(t, "http://localhost:8080", client.baseURL)
}

func TestListDocuments_Paginates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, docsPrefix+"learn/insurance/videos", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.False(t, r.URL.Query().Has("key"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{
				"documents": [{
					"name": "projects/finlit-test/databases/(default)/documents/learn/insurance/videos/Life%20Insurance",
					"fields": {"title": {"stringValue": "Life Insurance"}, "url": {"stringValue": "https://youtu.be/9Cny-On7dQk"}}
				}],
				"nextPageToken": "page2"
			}`))
			return
		}
		assert.Equal(t, "page2", r.URL.Query().Get("pageToken"))
		w.Write([]byte(`{
			"documents": [{
				"name": "projects/finlit-test/databases/(default)/documents/learn/insurance/videos/Untitled",
				"fields": {"views": {"integerValue": "3"}}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "finlit-test", "secret", zerolog.Nop())
	docs, err := client.ListDocuments(context.Background(), "learn", "insurance", "videos")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, docs, 2)
	assert.Equal(t, "Life Insurance", docs[0].ID)
	assert.Equal(t, "Life Insurance", docs[0].Fields["title"])
	assert.Equal(t, "https://youtu.be/9Cny-On7dQk", docs[0].Fields["url"])
	assert.Equal(t, "Untitled", docs[1].ID)
	assert.Empty(t, docs[1].Fields["title"])
}

func TestListDocuments_EmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "finlit-test", "", zerolog.Nop())
	docs, err := client.ListDocuments(context.Background(), "learn", "banking", "videos")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestListDocuments_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == docsPrefix+"broken" {
			w.Write([]byte(`{not json`))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"status": "PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "finlit-test", "", zerolog.Nop())

	_, err := client.ListDocuments(context.Background(), "denied")
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.Contains(t, err.Error(), "PERMISSION_DENIED")

	_, err = client.ListDocuments(context.Background(), "broken")
	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}

func TestListDocuments_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := NewClient(server.URL, "finlit-test", "SECRET-FIRESTORE-KEY", zerolog.Nop())
	_, err := client.ListDocuments(context.Background(), "learn")
	assert.True(t, errors.Is(err, domain.ErrFetch))
	assert.NotContains(t, err.Error(), "SECRET-FIRESTORE-KEY")
}

func TestSetDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PATCH", r.Method)
		assert.Equal(t, docsPrefix+"learn/stocks/videos/Stock Basics", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Fields map[string]struct {
				StringValue string `json:"stringValue"`
			} `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Stock Basics", body.Fields["title"].StringValue)
		assert.Equal(t, "https://youtu.be/x", body.Fields["url"].StringValue)

		w.Write([]byte(`{"name": "ok"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "finlit-test", "", zerolog.Nop())
	err := client.SetDocument(context.Background(), map[string]string{
		"title": "Stock Basics",
		"url":   "https://youtu.be/x",
	}, "learn", "stocks", "videos", "Stock Basics")
	require.NoError(t, err)
}
