package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, http.StatusOK},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"invalid input wrapped", fmt.Errorf("buy: %w", ErrInvalidInput), http.StatusBadRequest},
		{"amount too low", ErrAmountTooLow, http.StatusBadRequest},
		{"below minimum", ErrBelowMinimum, http.StatusBadRequest},
		{"insufficient funds", ErrInsufficientFunds, http.StatusConflict},
		{"no holdings", ErrNoHoldings, http.StatusConflict},
		{"busy", ErrBusy, http.StatusConflict},
		{"fetch", fmt.Errorf("list: %w", ErrFetch), http.StatusBadGateway},
		{"malformed", ErrMalformedResponse, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HTTPStatus(tc.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	leaky := fmt.Errorf("gemini request failed: %w: Post \"https://host/x?key=SECRET\"", ErrFetch)

	testCases := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, ""},
		{"fetch hides cause", leaky, "upstream service unavailable"},
		{"malformed", fmt.Errorf("decode: %w", ErrMalformedResponse), "upstream service returned an unexpected response"},
		{"deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), "upstream request timed out"},
		{"internal", errors.New("open /var/lib/finlit/sessions.db: locked"), "internal error"},
		{"client error kept", fmt.Errorf("session abc: %w", ErrNotFound), "session abc: not found"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := PublicMessage(tc.err)
			assert.Equal(t, tc.expected, msg)
			assert.NotContains(t, msg, "SECRET")
		})
	}
}
