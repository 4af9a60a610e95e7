// Package sip projects Systematic Investment Plan growth with the annuity-due
// future-value formula.
package sip

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/finlit/finlit/internal/domain"
)

// Plan is a fixed monthly contribution held for a number of years at an expected annual rate
type Plan struct {
	Monthly    float64 `json:"monthly"`
	Years      int     `json:"years"`
	AnnualRate float64 `json:"rate"` // percent, e.g. 12 for 12%
}

// YearPoint is one entry of the yearly chart series
type YearPoint struct {
	Year        int     `json:"year"`
	Contributed float64 `json:"investment"`
	Value       float64 `json:"value"`
}

// Projection holds full-precision results. Use Display for rounded figures.
type Projection struct {
	Plan        Plan        `json:"plan"`
	Contributed float64     `json:"investment"`
	Terminal    float64     `json:"total"`
	Returns     float64     `json:"returns"`
	Series      []YearPoint `json:"series"`
}

// Validate checks the plan inputs
func (p Plan) Validate() error {
	if !(p.Monthly > 0) || math.IsInf(p.Monthly, 0) {
		return fmt.Errorf("monthly contribution must be positive: %w", domain.ErrInvalidInput)
	}
	if p.Years <= 0 {
		return fmt.Errorf("duration must be at least one year: %w", domain.ErrInvalidInput)
	}
	if !(p.AnnualRate >= 0) || math.IsInf(p.AnnualRate, 0) {
		return fmt.Errorf("annual rate must be zero or positive: %w", domain.ErrInvalidInput)
	}
	return nil
}

// FutureValue returns the annuity-due value of contributing monthly for the given months.
// A zero rate degrades to the plain sum of contributions.
func FutureValue(monthly, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	i := annualRate / 12 / 100
	if i == 0 {
		return monthly * float64(months)
	}
	return monthly * (math.Pow(1+i, float64(months)) - 1) / i * (1 + i)
}

// Calculate projects the plan and builds the year-by-year series (year 0 through Years)
func Calculate(p Plan) (*Projection, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	totalMonths := p.Years * 12
	terminal := FutureValue(p.Monthly, p.AnnualRate, totalMonths)
	contributed := p.Monthly * float64(totalMonths)

	series := make([]YearPoint, 0, p.Years+1)
	for year := 0; year <= p.Years; year++ {
		months := year * 12
		series = append(series, YearPoint{
			Year:        year,
			Contributed: p.Monthly * float64(months),
			Value:       FutureValue(p.Monthly, p.AnnualRate, months),
		})
	}

	return &Projection{
		Plan:        p,
		Contributed: contributed,
		Terminal:    terminal,
		Returns:     terminal - contributed,
		Series:      series,
	}, nil
}

// Display returns a copy with every money figure rounded to the nearest currency unit
func (p *Projection) Display() Projection {
	out := Projection{
		Plan:        p.Plan,
		Contributed: math.Round(p.Contributed),
		Terminal:    math.Round(p.Terminal),
		Returns:     math.Round(p.Returns),
		Series:      make([]YearPoint, len(p.Series)),
	}
	for i, pt := range p.Series {
		out.Series[i] = YearPoint{
			Year:        pt.Year,
			Contributed: math.Round(pt.Contributed),
			Value:       math.Round(pt.Value),
		}
	}
	return out
}

// Summary is the sentence shown under the calculator
func (p *Projection) Summary() string {
	d := p.Display()
	return fmt.Sprintf(
		"A monthly investment of %s for %d years at %g%% expected annual returns could grow to %s. "+
			"This includes your investment of %s and estimated returns of %s.",
		FormatAmount(d.Plan.Monthly), d.Plan.Years, d.Plan.AnnualRate,
		FormatAmount(d.Terminal), FormatAmount(d.Contributed), FormatAmount(d.Returns),
	)
}

// FormatAmount renders a whole-unit amount with thousands separators, e.g. 1161695 -> "1,161,695"
func FormatAmount(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}
