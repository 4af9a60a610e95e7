// Package market implements the stock trading game: a small cash-and-holdings ledger
// whose prices move by a sector-correlated random walk, one simulated day at a time.
package market

import (
	"github.com/shopspring/decimal"
)

// RiskTier scales an instrument's individual daily price shock
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// Multiplier returns the volatility multiplier for the tier
func (t RiskTier) Multiplier() float64 {
	switch t {
	case RiskLow:
		return 0.7
	case RiskHigh:
		return 1.5
	default:
		return 1.0
	}
}

// Instrument is one tradable stock in the game
type Instrument struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Change float64         `json:"change"` // last daily change in percent
	Sector string          `json:"sector"`
	Risk   RiskTier        `json:"risk"`
	Owned  int64           `json:"owned"`
}

// Value returns owned × price
func (i Instrument) Value() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Owned))
}

// DefaultStartingCash is the coin balance of a new game
var DefaultStartingCash = decimal.NewFromInt(1000)

// DefaultUniverse returns the instruments a new game starts with
func DefaultUniverse() []Instrument {
	return []Instrument{
		{ID: "techcorp", Name: "TechCorp", Price: decimal.NewFromInt(150), Change: 2.5, Sector: "Technology", Risk: RiskHigh},
		{ID: "ecoenergy", Name: "EcoEnergy", Price: decimal.NewFromInt(75), Change: -1.2, Sector: "Energy", Risk: RiskMedium},
		{ID: "healthcare-plus", Name: "HealthCare Plus", Price: decimal.NewFromInt(200), Change: 3.8, Sector: "Healthcare", Risk: RiskLow},
		{ID: "global-finance", Name: "Global Finance", Price: decimal.NewFromInt(120), Change: -0.8, Sector: "Finance", Risk: RiskMedium},
	}
}
