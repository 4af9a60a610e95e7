package market

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/finlit/finlit/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSource replays vals in a loop
type fixedSource struct {
	vals []float64
	i    int
}

func (s *fixedSource) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func constant(v float64) *fixedSource {
	return &fixedSource{vals: []float64{v}}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), constant(0.5))
}

func TestNewEngine_DefaultUniverse(t *testing.T) {
	e := newTestEngine()
	p := e.Portfolio()

	assert.True(t, p.Cash.Equal(dec("1000")))
	assert.Equal(t, 0, p.Day)
	require.Len(t, p.Instruments, 4)
	assert.Equal(t, "TechCorp", p.Instruments[0].Name)
	assert.Equal(t, RiskHigh, p.Instruments[0].Risk)
	assert.Equal(t, "HealthCare Plus", p.Instruments[2].Name)
	assert.True(t, p.Instruments[2].Price.Equal(dec("200")))
	assert.True(t, e.NetWorth().Equal(dec("1000")))
}

func TestBuy(t *testing.T) {
	e := newTestEngine()

	trade, err := e.Buy("techcorp", 1000)
	require.NoError(t, err)

	assert.Equal(t, int64(6), trade.Shares)
	assert.True(t, trade.Cost.Equal(dec("900")))
	assert.True(t, trade.Cash.Equal(dec("100")))

	p := e.Portfolio()
	assert.True(t, p.Cash.Equal(dec("100")))
	assert.Equal(t, int64(6), p.Instruments[0].Owned)
	assert.True(t, e.NetWorth().Equal(dec("1000")))
}

func TestBuy_Failures(t *testing.T) {
	testCases := []struct {
		name       string
		instrument string
		amount     float64
		expected   error
	}{
		{name: "amount below one share", instrument: "techcorp", amount: 100, expected: domain.ErrAmountTooLow},
		{name: "more than cash", instrument: "ecoenergy", amount: 1000.01, expected: domain.ErrInsufficientFunds},
		{name: "zero", instrument: "techcorp", amount: 0, expected: domain.ErrInvalidInput},
		{name: "negative", instrument: "techcorp", amount: -5, expected: domain.ErrInvalidInput},
		{name: "NaN", instrument: "techcorp", amount: math.NaN(), expected: domain.ErrInvalidInput},
		{name: "infinite", instrument: "techcorp", amount: math.Inf(1), expected: domain.ErrInvalidInput},
		{name: "unknown instrument", instrument: "acme", amount: 500, expected: domain.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine()
			before := e.Portfolio()

			trade, err := e.Buy(tc.instrument, tc.amount)
			assert.Nil(t, trade)
			assert.True(t, errors.Is(err, tc.expected), "got %v", err)
			assert.Equal(t, before, e.Portfolio(), "failed buy must not mutate state")
		})
	}
}

func TestBuy_ExactCash(t *testing.T) {
	e := newTestEngine()

	trade, err := e.Buy("healthcare-plus", 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(5), trade.Shares)
	assert.True(t, e.Portfolio().Cash.IsZero())
}

func TestSell(t *testing.T) {
	e := newTestEngine()

	_, err := e.Buy("techcorp", 1000)
	require.NoError(t, err)

	sale, err := e.Sell("techcorp")
	require.NoError(t, err)

	assert.Equal(t, int64(6), sale.Shares)
	assert.True(t, sale.Proceeds.Equal(dec("900")))
	// 900 / 1.025 backs out the last +2.5% change
	assert.True(t, sale.OriginalValue.Equal(dec("878.05")), sale.OriginalValue.String())
	assert.True(t, sale.ProfitLoss.Equal(dec("21.95")), sale.ProfitLoss.String())
	assert.True(t, sale.Cash.Equal(dec("1000")))
	assert.Equal(t, int64(0), e.Portfolio().Instruments[0].Owned)
}

func TestSell_NegativeChangeReportsLoss(t *testing.T) {
	e := newTestEngine()

	_, err := e.Buy("ecoenergy", 750)
	require.NoError(t, err)

	sale, err := e.Sell("ecoenergy")
	require.NoError(t, err)
	assert.True(t, sale.ProfitLoss.IsNegative())
}

func TestSell_Failures(t *testing.T) {
	e := newTestEngine()
	before := e.Portfolio()

	_, err := e.Sell("techcorp")
	assert.True(t, errors.Is(err, domain.ErrNoHoldings))

	_, err = e.Sell("acme")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	assert.Equal(t, before, e.Portfolio())
}

func TestRoundTrip_NetWorthInvariant(t *testing.T) {
	e := newTestEngine()

	for _, id := range []string{"techcorp", "ecoenergy", "healthcare-plus", "global-finance"} {
		before := e.NetWorth()
		cashBefore := e.Portfolio().Cash

		if _, err := e.Buy(id, 300); err != nil {
			require.True(t, errors.Is(err, domain.ErrAmountTooLow))
			continue
		}
		assert.True(t, e.NetWorth().Equal(before), "net worth after buy of %s", id)

		_, err := e.Sell(id)
		require.NoError(t, err)
		assert.True(t, e.Portfolio().Cash.Equal(cashBefore), "cash restored after %s", id)
		assert.True(t, e.NetWorth().Equal(before))
	}
}

func TestAdvanceDay_NeutralShocks(t *testing.T) {
	e := newTestEngine()

	report := e.AdvanceDay()

	assert.Equal(t, 1, report.Day)
	assert.Nil(t, report.Event)
	assert.Len(t, report.SectorShocks, 4)

	for i, inst := range e.Portfolio().Instruments {
		assert.True(t, inst.Price.Equal(DefaultUniverse()[i].Price), inst.Name)
		assert.Equal(t, 0.0, inst.Change)
	}
}

func TestAdvanceDay_MaximumDownShock(t *testing.T) {
	e := NewEngine(DefaultConfig(), constant(0))

	report := e.AdvanceDay()
	p := e.Portfolio()

	// sector -2%, individual -3% scaled by risk tier
	assert.True(t, p.Instruments[0].Price.Equal(dec("140.25")), p.Instruments[0].Price.String())
	assert.Equal(t, -6.5, p.Instruments[0].Change)
	assert.True(t, p.Instruments[1].Price.Equal(dec("71.25")), p.Instruments[1].Price.String())
	assert.Equal(t, -5.0, p.Instruments[1].Change)
	assert.True(t, p.Instruments[2].Price.Equal(dec("191.8")), p.Instruments[2].Price.String())
	assert.Equal(t, -4.1, p.Instruments[2].Change)

	require.NotNil(t, report.Event)
	assert.Equal(t, "Technology", report.Event.Sector)
	assert.NotEmpty(t, report.Event.Headline)
}

func TestAdvanceDay_SectorShockShared(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Universe = []Instrument{
		{ID: "a", Name: "A", Price: dec("100"), Sector: "Energy", Risk: RiskMedium},
		{ID: "b", Name: "B", Price: dec("100"), Sector: "Energy", Risk: RiskMedium},
	}
	// sector draw 1.0 (+2%), individual draws neutral, no event
	e := NewEngine(cfg, &fixedSource{vals: []float64{1, 0.5, 0.5, 0.9}})

	report := e.AdvanceDay()
	require.Len(t, report.SectorShocks, 1)
	assert.InDelta(t, 0.02, report.SectorShocks["Energy"], 1e-12)

	p := e.Portfolio()
	assert.True(t, p.Instruments[0].Price.Equal(dec("102")))
	assert.True(t, p.Instruments[1].Price.Equal(dec("102")))
	assert.Equal(t, 2.0, p.Instruments[0].Change)
}

func TestAdvanceDay_PriceFloor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Universe = []Instrument{
		{ID: "penny", Name: "Penny", Price: dec("1"), Sector: "Finance", Risk: RiskHigh},
	}
	e := NewEngine(cfg, constant(0))

	for i := 0; i < 10; i++ {
		e.AdvanceDay()
		assert.True(t, e.Portfolio().Instruments[0].Price.Equal(dec("1")))
	}
}

func TestAdvanceDay_SeededWalkKeepsInvariants(t *testing.T) {
	e := NewEngine(DefaultConfig(), rand.New(rand.NewPCG(42, 7)))

	_, err := e.Buy("global-finance", 500)
	require.NoError(t, err)

	for day := 1; day <= 250; day++ {
		e.AdvanceDay()
		p := e.Portfolio()
		assert.Equal(t, day, p.Day)

		expected := p.Cash
		for _, inst := range p.Instruments {
			assert.True(t, inst.Price.GreaterThanOrEqual(dec("1")))
			assert.True(t, inst.Price.Equal(inst.Price.Round(2)))
			assert.LessOrEqual(t, math.Abs(inst.Change), 6.5+1e-9)
			expected = expected.Add(inst.Value())
		}
		assert.True(t, e.NetWorth().Equal(expected))
	}
}

func TestAdvanceDay_Deterministic(t *testing.T) {
	a := NewEngine(DefaultConfig(), rand.New(rand.NewPCG(1, 2)))
	b := NewEngine(DefaultConfig(), rand.New(rand.NewPCG(1, 2)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.AdvanceDay(), b.AdvanceDay())
	}
	assert.Equal(t, a.Portfolio(), b.Portfolio())
}

func TestHistoryIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryLimit = 10
	e := NewEngine(cfg, rand.New(rand.NewPCG(3, 4)))

	for i := 0; i < 25; i++ {
		e.AdvanceDay()
	}

	history, err := e.History("techcorp")
	require.NoError(t, err)
	assert.Len(t, history, 10)
	assert.Equal(t, e.Portfolio().Instruments[0].Price.InexactFloat64(), history[9])

	_, err = e.History("acme")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestIndicators(t *testing.T) {
	e := NewEngine(DefaultConfig(), rand.New(rand.NewPCG(5, 6)))

	ind, err := e.Indicators("ecoenergy")
	require.NoError(t, err)
	assert.Nil(t, ind.SMA5)
	assert.Nil(t, ind.RSI14)
	assert.Equal(t, "insufficient data", ind.Signal)

	for i := 0; i < 20; i++ {
		e.AdvanceDay()
	}

	ind, err = e.Indicators("ecoenergy")
	require.NoError(t, err)
	assert.Equal(t, 20, ind.Days)
	require.NotNil(t, ind.SMA5)
	require.NotNil(t, ind.RSI14)
	assert.GreaterOrEqual(t, *ind.RSI14, 0.0)
	assert.LessOrEqual(t, *ind.RSI14, 100.0)
	assert.Contains(t, []string{"overbought", "oversold", "neutral"}, ind.Signal)
}

func TestRiskTierMultiplier(t *testing.T) {
	assert.Equal(t, 0.7, RiskLow.Multiplier())
	assert.Equal(t, 1.0, RiskMedium.Multiplier())
	assert.Equal(t, 1.5, RiskHigh.Multiplier())
}

func TestStateRoundTrip(t *testing.T) {
	e := NewEngine(DefaultConfig(), rand.New(rand.NewPCG(9, 9)))
	_, err := e.Buy("techcorp", 700)
	require.NoError(t, err)
	e.AdvanceDay()
	e.AdvanceDay()

	data, err := e.MarshalState()
	require.NoError(t, err)

	restored, err := RestoreEngine(data, DefaultConfig(), constant(0.5))
	require.NoError(t, err)

	assert.Equal(t, e.Portfolio().Day, restored.Portfolio().Day)
	assert.True(t, e.NetWorth().Equal(restored.NetWorth()))
	for i, inst := range e.Portfolio().Instruments {
		got := restored.Portfolio().Instruments[i]
		assert.Equal(t, inst.ID, got.ID)
		assert.True(t, inst.Price.Equal(got.Price))
		assert.Equal(t, inst.Owned, got.Owned)
		assert.Equal(t, inst.Change, got.Change)
	}

	h1, _ := e.History("techcorp")
	h2, _ := restored.History("techcorp")
	assert.Equal(t, h1, h2)

	_, err = RestoreEngine([]byte("garbage"), DefaultConfig(), constant(0.5))
	assert.Error(t, err)
}
