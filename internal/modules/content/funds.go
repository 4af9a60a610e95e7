package content

import (
	"fmt"
	"math"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/pkg/formulas"
)

// Timeframe selects a slice of the simulated fund history
type Timeframe string

const (
	Timeframe1Y Timeframe = "1y"
	Timeframe3Y Timeframe = "3y"
	Timeframe5Y Timeframe = "5y"
)

const (
	performanceStart = 10000.0
	performanceYears = 5
	performanceEpoch = 2018
)

// months returns the number of trailing points kept for the timeframe, 0 meaning all
func (t Timeframe) months() (int, error) {
	switch t {
	case Timeframe1Y:
		return 12, nil
	case Timeframe3Y:
		return 36, nil
	case Timeframe5Y, "":
		return 0, nil
	default:
		return 0, fmt.Errorf("unknown timeframe %q: %w", t, domain.ErrInvalidInput)
	}
}

// RandomSource produces uniform values in [0, 1)
type RandomSource interface {
	Float64() float64
}

// PerformancePoint is one month of simulated fund value
type PerformancePoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// PerformanceSummary describes a simulated series. Percentages are rounded to two places.
type PerformanceSummary struct {
	Start             float64 `json:"start"`
	End               float64 `json:"end"`
	TotalReturnPct    float64 `json:"total_return_pct"`
	MeanMonthlyPct    float64 `json:"mean_monthly_pct"`
	MonthlyVolatility float64 `json:"monthly_volatility_pct"`
	MaxDrawdownPct    float64 `json:"max_drawdown_pct"`
}

// Performance is a simulated growth path of 10,000 invested in a fund
type Performance struct {
	FundID    int                `json:"fund_id"`
	Timeframe Timeframe          `json:"timeframe"`
	Points    []PerformancePoint `json:"points"`
	Summary   PerformanceSummary `json:"summary"`
}

// Advice is the scripted recommendation shown next to a fund
type Advice struct {
	Rating  string `json:"rating"`
	Summary string `json:"summary"`
	Outlook string `json:"outlook"`
}

// Investment confirms an accepted fund investment
type Investment struct {
	FundID   int     `json:"fund_id"`
	FundName string  `json:"fund_name"`
	Amount   float64 `json:"amount"`
	Message  string  `json:"message"`
}

// volatility is the monthly swing in percentage points for a risk label
func volatility(risk string) float64 {
	switch risk {
	case "High":
		return 2
	case "Moderate":
		return 1.2
	default:
		return 0.7
	}
}

// SimulatePerformance builds five years of monthly values starting from 10,000. Each month
// grows by a twelfth of the average annual return plus a uniform shock scaled by the fund's
// risk. The timeframe keeps the trailing 12 or 36 points.
func SimulatePerformance(fund Fund, timeframe Timeframe, rng RandomSource) (*Performance, error) {
	keep, err := timeframe.months()
	if err != nil {
		return nil, err
	}
	if timeframe == "" {
		timeframe = Timeframe5Y
	}

	annual := fund.Returns.FiveYear / performanceYears
	swing := volatility(fund.Risk)

	total := performanceYears * 12
	points := make([]PerformancePoint, 0, total+1)
	value := performanceStart
	for month := 0; month <= total; month++ {
		monthly := annual/12 + (rng.Float64()-0.5)*swing
		value *= 1 + monthly/100

		points = append(points, PerformancePoint{
			Label: fmt.Sprintf("%s %d", time.Month(month%12+1).String()[:3], performanceEpoch+month/12),
			Value: math.Round(value),
		})
	}

	if keep > 0 && keep < len(points) {
		points = points[len(points)-keep:]
	}

	return &Performance{
		FundID:    fund.ID,
		Timeframe: timeframe,
		Points:    points,
		Summary:   summarize(points),
	}, nil
}

func summarize(points []PerformancePoint) PerformanceSummary {
	if len(points) == 0 {
		return PerformanceSummary{}
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	returns := formulas.CalculateReturns(values)

	start, end := values[0], values[len(values)-1]
	return PerformanceSummary{
		Start:             start,
		End:               end,
		TotalReturnPct:    formulas.Round((end-start)/start*100, 2),
		MeanMonthlyPct:    formulas.Round(formulas.Mean(returns)*100, 2),
		MonthlyVolatility: formulas.Round(formulas.StdDev(returns)*100, 2),
		MaxDrawdownPct:    formulas.Round(formulas.MaxDrawdown(values)*100, 2),
	}
}

// AdviseFund rates a fund from its AI score and describes the outlook for its risk level
func AdviseFund(fund Fund) Advice {
	var advice Advice
	switch {
	case fund.AIScore > 80:
		advice.Rating = "Strong Buy"
		advice.Summary = "Strong Buy: This fund has shown consistent performance and is well-positioned for future growth."
	case fund.AIScore > 70:
		advice.Rating = "Moderate Buy"
		advice.Summary = "Moderate Buy: This fund has potential but watch market conditions before increasing your position."
	default:
		advice.Rating = "Hold"
		advice.Summary = "Hold: Consider diversifying your portfolio with other investment options."
	}

	var outlook string
	switch fund.Risk {
	case "High":
		outlook = "high returns with significant volatility"
	case "Moderate":
		outlook = "balanced returns with moderate risk"
	default:
		outlook = "stable returns with minimal risk"
	}
	advice.Outlook = "Based on current market trends and historical performance, this fund is expected to provide " + outlook + "."

	return advice
}

// ValidateInvestment checks an amount against a fund's minimum
func ValidateInvestment(fund Fund, amount float64) (*Investment, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("please enter a valid investment amount: %w", domain.ErrInvalidInput)
	}
	if amount < fund.MinInvestment {
		return nil, fmt.Errorf("this fund requires a minimum investment of ₹%s: %w",
			formatAmount(fund.MinInvestment), domain.ErrBelowMinimum)
	}

	return &Investment{
		FundID:   fund.ID,
		FundName: fund.Name,
		Amount:   amount,
		Message:  fmt.Sprintf("You have successfully invested ₹%s in %s", formatAmount(amount), fund.Name),
	}, nil
}

func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
