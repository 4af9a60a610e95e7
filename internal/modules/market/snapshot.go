package market

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

type instrumentState struct {
	ID     string   `msgpack:"id"`
	Name   string   `msgpack:"name"`
	Price  string   `msgpack:"price"`
	Change float64  `msgpack:"change"`
	Sector string   `msgpack:"sector"`
	Risk   RiskTier `msgpack:"risk"`
	Owned  int64    `msgpack:"owned"`
}

type engineState struct {
	Cash        string               `msgpack:"cash"`
	Day         int                  `msgpack:"day"`
	Instruments []instrumentState    `msgpack:"instruments"`
	History     map[string][]float64 `msgpack:"history"`
}

// MarshalState encodes the portfolio and price history as msgpack
func (e *Engine) MarshalState() ([]byte, error) {
	state := engineState{
		Cash:        e.portfolio.Cash.String(),
		Day:         e.portfolio.Day,
		Instruments: make([]instrumentState, 0, len(e.portfolio.Instruments)),
		History:     e.history,
	}
	for _, inst := range e.portfolio.Instruments {
		state.Instruments = append(state.Instruments, instrumentState{
			ID:     inst.ID,
			Name:   inst.Name,
			Price:  inst.Price.String(),
			Change: inst.Change,
			Sector: inst.Sector,
			Risk:   inst.Risk,
			Owned:  inst.Owned,
		})
	}

	data, err := msgpack.Marshal(&state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode game state: %w", err)
	}
	return data, nil
}

// RestoreEngine rebuilds an engine from MarshalState output. The universe in cfg is ignored.
func RestoreEngine(data []byte, cfg Config, rng RandomSource) (*Engine, error) {
	var state engineState
	if err := msgpack.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode game state: %w", err)
	}

	cash, err := decimal.NewFromString(state.Cash)
	if err != nil {
		return nil, fmt.Errorf("invalid cash %q: %w", state.Cash, err)
	}

	instruments := make([]Instrument, 0, len(state.Instruments))
	for _, s := range state.Instruments {
		price, err := decimal.NewFromString(s.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for %s: %w", s.Price, s.ID, err)
		}
		instruments = append(instruments, Instrument{
			ID:     s.ID,
			Name:   s.Name,
			Price:  price,
			Change: s.Change,
			Sector: s.Sector,
			Risk:   s.Risk,
			Owned:  s.Owned,
		})
	}

	history := state.History
	if history == nil {
		history = make(map[string][]float64, len(instruments))
	}

	cfg.Universe = instruments
	return &Engine{
		cfg: cfg,
		rng: rng,
		portfolio: Portfolio{
			Cash:        cash,
			Instruments: instruments,
			Day:         state.Day,
		},
		history: history,
	}, nil
}
