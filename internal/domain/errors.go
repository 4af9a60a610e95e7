// Package domain holds the error taxonomy shared by every FinLit module.
//
// Modules wrap these sentinels with context (fmt.Errorf("...: %w", err)) and
// HTTP handlers translate them into status codes with errors.Is.
package domain

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput is returned for non-positive, non-finite or missing inputs
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientFunds is returned when a purchase exceeds the cash balance
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAmountTooLow is returned when an amount buys zero whole shares
	ErrAmountTooLow = errors.New("amount too low")
	// ErrNoHoldings is returned when selling an instrument that is not owned
	ErrNoHoldings = errors.New("no holdings")
	// ErrFetch covers network, store and endpoint failures
	ErrFetch = errors.New("fetch failed")
	// ErrMalformedResponse is returned when the text-generation reply has an unexpected shape
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNotFound is returned for unknown sessions, conversations, funds or instruments
	ErrNotFound = errors.New("not found")
	// ErrBusy is returned when a conversation already has a request in flight
	ErrBusy = errors.New("request already in flight")
	// ErrBelowMinimum is returned when a fund investment is under the fund minimum
	ErrBelowMinimum = errors.New("below minimum investment")
)

// HTTPStatus maps an error onto the HTTP status used by the API handlers
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrAmountTooLow),
		errors.Is(err, ErrBelowMinimum):
		return http.StatusBadRequest
	case errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrNoHoldings),
		errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrFetch),
		errors.Is(err, ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text safe to hand to API clients and event
// subscribers. Upstream and internal failures get a fixed message because
// their wrapped causes can carry request URLs and credentials.
func PublicMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "upstream request timed out"
	case errors.Is(err, ErrFetch):
		return "upstream service unavailable"
	case errors.Is(err, ErrMalformedResponse):
		return "upstream service returned an unexpected response"
	case HTTPStatus(err) == http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}
