// Package formulas holds the technical indicators and summary statistics shared by the
// trading game, the gold tracker and the fund explorer.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the latest simple moving average over length points,
// or nil if there are fewer than length points
func SMA(values []float64, length int) *float64 {
	if length <= 0 || len(values) < length {
		return nil
	}

	sma := talib.Sma(values, length)
	return last(sma)
}

// RSI returns the latest Relative Strength Index (0-100),
// or nil if there are not length+1 points
//
//	RSI = 100 - (100 / (1 + RS)), RS = average gain / average loss
func RSI(values []float64, length int) *float64 {
	if length <= 0 || len(values) < length+1 {
		return nil
	}

	rsi := talib.Rsi(values, length)
	return last(rsi)
}

// Trend classifies the latest value against its moving average
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// TrendVsSMA compares the latest value to SMA(length). Within tolerance (fraction of the
// average) counts as flat. Without enough data the trend is flat.
func TrendVsSMA(values []float64, length int, tolerance float64) Trend {
	sma := SMA(values, length)
	if sma == nil || *sma == 0 {
		return TrendFlat
	}

	distance := (values[len(values)-1] - *sma) / *sma
	switch {
	case distance > tolerance:
		return TrendUp
	case distance < -tolerance:
		return TrendDown
	default:
		return TrendFlat
	}
}

func last(series []float64) *float64 {
	if len(series) == 0 {
		return nil
	}
	v := series[len(series)-1]
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
