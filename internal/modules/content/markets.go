package content

import (
	"github.com/finlit/finlit/pkg/formulas"
)

const (
	goldTrendPeriod    = 3
	goldTrendTolerance = 0.005
)

// GoldReport is the gold price tracker view
type GoldReport struct {
	Prices         []PricePoint   `json:"prices"`
	Current        float64        `json:"current"`
	ChangePct      float64        `json:"change_pct"`
	SMA            *float64       `json:"sma,omitempty"`
	Trend          formulas.Trend `json:"trend"`
	Recommendation string         `json:"recommendation"`
	Notes          []string       `json:"notes"`
}

// StockOverview is the stock market overview
type StockOverview struct {
	Indices      []IndexPoint `json:"indices"`
	SP500Change  float64      `json:"sp500_change_pct"`
	NasdaqChange float64      `json:"nasdaq_change_pct"`
	Top          []StockPick  `json:"top"`
	Summary      string       `json:"summary"`
	Notes        []string     `json:"notes"`
}

// BuildGoldReport derives the latest change and an SMA trend recommendation from a price history
func BuildGoldReport(prices []PricePoint, notes []string) GoldReport {
	report := GoldReport{
		Prices: prices,
		Trend:  formulas.TrendFlat,
		Notes:  notes,
	}

	values := make([]float64, len(prices))
	for i, p := range prices {
		values[i] = p.Price
	}

	if n := len(values); n > 0 {
		report.Current = values[n-1]
		if n > 1 {
			report.ChangePct = percentChange(values[n-2], values[n-1])
		}
	}

	if sma := formulas.SMA(values, goldTrendPeriod); sma != nil {
		rounded := formulas.Round(*sma, 2)
		report.SMA = &rounded
		report.Trend = formulas.TrendVsSMA(values, goldTrendPeriod, goldTrendTolerance)
	}

	switch report.Trend {
	case formulas.TrendUp:
		report.Recommendation = "Buy"
	case formulas.TrendDown:
		report.Recommendation = "Sell"
	default:
		report.Recommendation = "Hold"
	}

	return report
}

// BuildStockOverview summarizes index moves over the tracked period
func BuildStockOverview(indices []IndexPoint, top []StockPick, summary string, notes []string) StockOverview {
	overview := StockOverview{
		Indices: indices,
		Top:     top,
		Summary: summary,
		Notes:   notes,
	}

	if n := len(indices); n > 1 {
		overview.SP500Change = percentChange(indices[0].SP500, indices[n-1].SP500)
		overview.NasdaqChange = percentChange(indices[0].Nasdaq, indices[n-1].Nasdaq)
	}

	return overview
}

func percentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return formulas.Round((to-from)/from*100, 2)
}
