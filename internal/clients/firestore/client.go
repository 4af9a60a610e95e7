// Package firestore provides a minimal Cloud Firestore REST client for string-field documents.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://firestore.googleapis.com"
	pageSize       = 300
)

// Document is a Firestore document with its string fields decoded
type Document struct {
	ID     string
	Fields map[string]string
}

type value struct {
	StringValue *string `json:"stringValue,omitempty"`
}

type document struct {
	Name   string           `json:"name,omitempty"`
	Fields map[string]value `json:"fields,omitempty"`
}

type listResponse struct {
	Documents     []document `json:"documents"`
	NextPageToken string     `json:"nextPageToken"`
}

// Client talks to the Firestore REST API of one project's default database
type Client struct {
	baseURL    string
	projectID  string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Firestore client. baseURL may be empty for the public endpoint.
func NewClient(baseURL, projectID, apiKey string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("component", "firestore").Logger(),
	}
}

// ListDocuments returns every document of a collection, following page tokens.
// A missing or empty collection yields an empty slice.
func (c *Client) ListDocuments(ctx context.Context, collection ...string) ([]Document, error) {
	docs := make([]Document, 0)
	pageToken := ""

	for {
		query := url.Values{}
		query.Set("pageSize", fmt.Sprint(pageSize))
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var resp listResponse
		if err := c.do(ctx, http.MethodGet, c.documentsURL(collection, query), nil, &resp); err != nil {
			return nil, err
		}

		for _, d := range resp.Documents {
			docs = append(docs, decode(d))
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	c.log.Debug().Str("collection", strings.Join(collection, "/")).Int("count", len(docs)).Msg("Listed documents")
	return docs, nil
}

// SetDocument creates or overwrites a document with string fields
func (c *Client) SetDocument(ctx context.Context, fields map[string]string, docPath ...string) error {
	body := document{Fields: make(map[string]value, len(fields))}
	for k, v := range fields {
		v := v
		body.Fields[k] = value{StringValue: &v}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	return c.do(ctx, http.MethodPatch, c.documentsURL(docPath, nil), payload, nil)
}

func (c *Client) documentsURL(segments []string, query url.Values) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}

	u := fmt.Sprintf("%s/v1/projects/%s/databases/(default)/documents/%s",
		c.baseURL, url.PathEscape(c.projectID), strings.Join(escaped, "/"))

	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firestore request failed: %w: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("firestore API error: status %d, body: %s: %w", resp.StatusCode, string(bodyBytes), domain.ErrFetch)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode firestore response: %w: %w", domain.ErrMalformedResponse, err)
	}
	return nil
}

func decode(d document) Document {
	doc := Document{
		ID:     path.Base(d.Name),
		Fields: make(map[string]string, len(d.Fields)),
	}
	if id, err := url.PathUnescape(doc.ID); err == nil {
		doc.ID = id
	}
	for k, v := range d.Fields {
		if v.StringValue != nil {
			doc.Fields[k] = *v.StringValue
		}
	}
	return doc
}
