// Package gemini provides a client for the Gemini generateContent REST endpoint.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-pro"
)

type part struct {
	Text string `json:"text,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client is the Gemini API client
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new Gemini client. Empty baseURL or model fall back to defaults.
func NewClient(baseURL, model, apiKey string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		log: log.With().Str("component", "gemini").Logger(),
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Generate sends a single-turn prompt and returns the first candidate's text.
// Transport and HTTP status failures wrap domain.ErrFetch; a response without
// candidates[0].content.parts[0].text wraps domain.ErrMalformedResponse.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Kept out of the URL so transport errors never carry it
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w: %w", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini API error: status %d, body: %s: %w", resp.StatusCode, string(bodyBytes), domain.ErrFetch)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w: %w", domain.ErrMalformedResponse, err)
	}

	text, ok := firstText(decoded)
	if !ok {
		return "", fmt.Errorf("invalid response format from Gemini API: %w", domain.ErrMalformedResponse)
	}

	c.log.Debug().
		Str("model", c.model).
		Int("prompt_chars", len(prompt)).
		Int("reply_chars", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Gemini reply received")

	return text, nil
}

func firstText(r generateResponse) (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	c := r.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 || c.Parts[0].Text == nil || *c.Parts[0].Text == "" {
		return "", false
	}
	return *c.Parts[0].Text, true
}
