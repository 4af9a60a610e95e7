package market

import (
	"github.com/finlit/finlit/pkg/formulas"
)

const (
	smaPeriod = 5
	rsiPeriod = 14
)

// Indicators are technical readings over an instrument's price history.
// Pointer fields are nil until enough days have been simulated.
type Indicators struct {
	InstrumentID string         `json:"instrument_id"`
	Days         int            `json:"days"`
	Prices       []float64      `json:"prices"`
	SMA5         *float64       `json:"sma_5,omitempty"`
	RSI14        *float64       `json:"rsi_14,omitempty"`
	Trend        formulas.Trend `json:"trend"`
	Signal       string         `json:"signal"`
}

// Indicators computes SMA(5), RSI(14) and a trend for the instrument
func (e *Engine) Indicators(instrumentID string) (*Indicators, error) {
	prices, err := e.History(instrumentID)
	if err != nil {
		return nil, err
	}

	ind := &Indicators{
		InstrumentID: instrumentID,
		Days:         len(prices) - 1,
		Prices:       prices,
		SMA5:         formulas.SMA(prices, smaPeriod),
		RSI14:        formulas.RSI(prices, rsiPeriod),
		Trend:        formulas.TrendVsSMA(prices, smaPeriod, 0.005),
	}
	ind.Signal = signal(ind.RSI14)
	return ind, nil
}

func signal(rsi *float64) string {
	switch {
	case rsi == nil:
		return "insufficient data"
	case *rsi >= 70:
		return "overbought"
	case *rsi <= 30:
		return "oversold"
	default:
		return "neutral"
	}
}
