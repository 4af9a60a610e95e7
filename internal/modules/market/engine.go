package market

import (
	"fmt"
	"math"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/pkg/formulas"
	"github.com/shopspring/decimal"
)

// RandomSource yields uniform draws in [0, 1). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// Config tunes the simulation
type Config struct {
	StartingCash     decimal.Decimal
	Universe         []Instrument
	SectorRange      float64 // sector shock drawn from [-SectorRange, +SectorRange]
	IndividualRange  float64 // individual shock before the risk multiplier
	EventProbability float64
	HistoryLimit     int
}

// DefaultConfig returns the standard game setup
func DefaultConfig() Config {
	return Config{
		StartingCash:     DefaultStartingCash,
		Universe:         DefaultUniverse(),
		SectorRange:      0.02,
		IndividualRange:  0.03,
		EventProbability: 0.1,
		HistoryLimit:     90,
	}
}

var minPrice = decimal.NewFromInt(1)

// Portfolio is the cash balance plus the ordered instruments
type Portfolio struct {
	Cash        decimal.Decimal `json:"cash"`
	Instruments []Instrument    `json:"instruments"`
	Day         int             `json:"day"`
}

// NetWorth returns cash + Σ(owned × price)
func (p Portfolio) NetWorth() decimal.Decimal {
	total := p.Cash
	for _, inst := range p.Instruments {
		total = total.Add(inst.Value())
	}
	return total
}

// Trade is the outcome of a successful buy
type Trade struct {
	InstrumentID string          `json:"instrument_id"`
	Shares       int64           `json:"shares"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Cash         decimal.Decimal `json:"cash"`
}

// SaleResult is the outcome of selling a whole position. OriginalValue backs the last
// daily change out of the current price; it is not a tracked cost basis.
type SaleResult struct {
	InstrumentID  string          `json:"instrument_id"`
	Shares        int64           `json:"shares"`
	Price         decimal.Decimal `json:"price"`
	Proceeds      decimal.Decimal `json:"proceeds"`
	OriginalValue decimal.Decimal `json:"original_value"`
	ProfitLoss    decimal.Decimal `json:"profit_loss"`
	Cash          decimal.Decimal `json:"cash"`
}

// DayReport summarises one AdvanceDay step
type DayReport struct {
	Day          int                `json:"day"`
	SectorShocks map[string]float64 `json:"sector_shocks"`
	Event        *MarketEvent       `json:"event,omitempty"`
}

// Engine owns one game's portfolio. It is not safe for concurrent use; Session serialises access.
type Engine struct {
	cfg       Config
	rng       RandomSource
	portfolio Portfolio
	history   map[string][]float64
}

// NewEngine starts a new game from cfg
func NewEngine(cfg Config, rng RandomSource) *Engine {
	instruments := make([]Instrument, len(cfg.Universe))
	copy(instruments, cfg.Universe)

	e := &Engine{
		cfg: cfg,
		rng: rng,
		portfolio: Portfolio{
			Cash:        cfg.StartingCash,
			Instruments: instruments,
		},
		history: make(map[string][]float64, len(instruments)),
	}
	for _, inst := range instruments {
		e.record(inst.ID, inst.Price)
	}
	return e
}

// Portfolio returns a copy of the current state
func (e *Engine) Portfolio() Portfolio {
	instruments := make([]Instrument, len(e.portfolio.Instruments))
	copy(instruments, e.portfolio.Instruments)
	return Portfolio{
		Cash:        e.portfolio.Cash,
		Instruments: instruments,
		Day:         e.portfolio.Day,
	}
}

// NetWorth returns cash + Σ(owned × price)
func (e *Engine) NetWorth() decimal.Decimal {
	return e.portfolio.NetWorth()
}

// Buy spends up to amount on whole shares of the instrument
func (e *Engine) Buy(instrumentID string, amount float64) (*Trade, error) {
	idx, err := e.find(instrumentID)
	if err != nil {
		return nil, err
	}

	if !(amount > 0) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("investment amount must be positive: %w", domain.ErrInvalidInput)
	}

	spend := decimal.NewFromFloat(amount)
	if spend.GreaterThan(e.portfolio.Cash) {
		return nil, fmt.Errorf("amount %s exceeds cash %s: %w", spend, e.portfolio.Cash, domain.ErrInsufficientFunds)
	}

	inst := &e.portfolio.Instruments[idx]
	shares := spend.Div(inst.Price).Floor().IntPart()
	if shares == 0 {
		return nil, fmt.Errorf("minimum investment required: %s coins: %w", inst.Price.StringFixed(2), domain.ErrAmountTooLow)
	}

	cost := inst.Price.Mul(decimal.NewFromInt(shares))
	e.portfolio.Cash = e.portfolio.Cash.Sub(cost)
	inst.Owned += shares

	return &Trade{
		InstrumentID: inst.ID,
		Shares:       shares,
		Price:        inst.Price,
		Cost:         cost,
		Cash:         e.portfolio.Cash,
	}, nil
}

// Sell liquidates the whole position in the instrument
func (e *Engine) Sell(instrumentID string) (*SaleResult, error) {
	idx, err := e.find(instrumentID)
	if err != nil {
		return nil, err
	}

	inst := &e.portfolio.Instruments[idx]
	if inst.Owned == 0 {
		return nil, fmt.Errorf("no shares of %s: %w", inst.Name, domain.ErrNoHoldings)
	}

	shares := inst.Owned
	proceeds := inst.Value()
	original := proceeds
	if factor := 1 + inst.Change/100; factor > 0 {
		original = proceeds.Div(decimal.NewFromFloat(factor)).Round(2)
	}

	e.portfolio.Cash = e.portfolio.Cash.Add(proceeds)
	inst.Owned = 0

	return &SaleResult{
		InstrumentID:  inst.ID,
		Shares:        shares,
		Price:         inst.Price,
		Proceeds:      proceeds,
		OriginalValue: original,
		ProfitLoss:    proceeds.Sub(original),
		Cash:          e.portfolio.Cash,
	}, nil
}

// AdvanceDay moves every price by its sector shock plus a risk-scaled individual shock
func (e *Engine) AdvanceDay() DayReport {
	sectors := e.sectors()
	shocks := make(map[string]float64, len(sectors))
	for _, sector := range sectors {
		shocks[sector] = e.uniform(e.cfg.SectorRange)
	}

	for i := range e.portfolio.Instruments {
		inst := &e.portfolio.Instruments[i]
		combined := shocks[inst.Sector] + e.uniform(e.cfg.IndividualRange)*inst.Risk.Multiplier()

		price := inst.Price.Mul(decimal.NewFromFloat(1 + combined)).Round(2)
		if price.LessThan(minPrice) {
			price = minPrice
		}

		inst.Price = price
		inst.Change = formulas.Round(combined*100, 2)
		e.record(inst.ID, price)
	}

	e.portfolio.Day++

	report := DayReport{Day: e.portfolio.Day, SectorShocks: shocks}
	if len(sectors) > 0 && e.rng.Float64() < e.cfg.EventProbability {
		sector := sectors[pick(len(sectors), e.rng.Float64())]
		report.Event = &MarketEvent{
			Sector:   sector,
			Headline: headlineFor(sector, e.rng.Float64()),
		}
	}

	return report
}

// History returns the recorded prices of an instrument, oldest first
func (e *Engine) History(instrumentID string) ([]float64, error) {
	if _, err := e.find(instrumentID); err != nil {
		return nil, err
	}

	prices := e.history[instrumentID]
	out := make([]float64, len(prices))
	copy(out, prices)
	return out, nil
}

func (e *Engine) find(instrumentID string) (int, error) {
	for i, inst := range e.portfolio.Instruments {
		if inst.ID == instrumentID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("instrument %q: %w", instrumentID, domain.ErrNotFound)
}

// sectors returns distinct sectors in order of first appearance
func (e *Engine) sectors() []string {
	seen := make(map[string]bool)
	var sectors []string
	for _, inst := range e.portfolio.Instruments {
		if !seen[inst.Sector] {
			seen[inst.Sector] = true
			sectors = append(sectors, inst.Sector)
		}
	}
	return sectors
}

func (e *Engine) uniform(width float64) float64 {
	return (e.rng.Float64()*2 - 1) * width
}

func (e *Engine) record(instrumentID string, price decimal.Decimal) {
	prices := append(e.history[instrumentID], price.InexactFloat64())
	if limit := e.cfg.HistoryLimit; limit > 0 && len(prices) > limit {
		prices = prices[len(prices)-limit:]
	}
	e.history[instrumentID] = prices
}
