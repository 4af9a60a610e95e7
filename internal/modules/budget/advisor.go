// Package budget splits monthly savings into fixed-ratio allocation suggestions.
package budget

import (
	"fmt"
	"math"

	"github.com/finlit/finlit/internal/domain"
)

const (
	emergencyRatio = 0.30
	emergencyCap   = 1000.0
	stocksRatio    = 0.40
	insuranceRatio = 0.20
)

// Kind identifies an allocation bucket
type Kind string

const (
	KindEmergency Kind = "emergency_fund"
	KindStocks    Kind = "stock_market"
	KindInsurance Kind = "insurance"
)

// Suggestion is one allocation of monthly savings
type Suggestion struct {
	Kind        Kind    `json:"kind"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Advise returns the emergency fund, stock market and insurance suggestions for the
// given monthly savings. The ratios are not normalised and the remainder stays unallocated.
func Advise(savings float64) ([]Suggestion, error) {
	if !(savings > 0) || math.IsInf(savings, 0) {
		return nil, fmt.Errorf("monthly savings must be positive: %w", domain.ErrInvalidInput)
	}

	return []Suggestion{
		{
			Kind:        KindEmergency,
			Title:       "Emergency Fund",
			Amount:      math.Min(savings*emergencyRatio, emergencyCap),
			Description: "Keep this in a high-yield savings account for emergencies",
		},
		{
			Kind:        KindStocks,
			Title:       "Stock Market Investment",
			Amount:      savings * stocksRatio,
			Description: "Consider index funds or blue-chip stocks for long-term growth",
		},
		{
			Kind:        KindInsurance,
			Title:       "Insurance Coverage",
			Amount:      savings * insuranceRatio,
			Description: "Allocate this for term life and health insurance premiums",
		},
	}, nil
}

// Unallocated returns the part of savings not covered by the suggestions
func Unallocated(savings float64, suggestions []Suggestion) float64 {
	remaining := savings
	for _, s := range suggestions {
		remaining -= s.Amount
	}
	return remaining
}
