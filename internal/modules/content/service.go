package content

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/rs/zerolog"
)

// FundDetail is a fund together with its advice
type FundDetail struct {
	Fund
	Advice Advice `json:"advice"`
}

// Service answers content queries over a Library
type Service struct {
	lib     *Library
	newRand func() RandomSource
	log     zerolog.Logger
}

// NewService creates a content service
func NewService(lib *Library, log zerolog.Logger) *Service {
	return &Service{
		lib: lib,
		newRand: func() RandomSource {
			return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
		},
		log: log.With().Str("service", "content").Logger(),
	}
}

// SetRandomFactory replaces the random source used for performance simulations
func (s *Service) SetRandomFactory(f func() RandomSource) {
	s.newRand = f
}

// Funds lists the mutual funds
func (s *Service) Funds() []Fund {
	return s.lib.Funds
}

// Fund returns one fund with its advice
func (s *Service) Fund(id int) (*FundDetail, error) {
	fund, err := s.fund(id)
	if err != nil {
		return nil, err
	}
	return &FundDetail{Fund: fund, Advice: AdviseFund(fund)}, nil
}

// Performance simulates the fund history over a timeframe
func (s *Service) Performance(id int, timeframe Timeframe) (*Performance, error) {
	fund, err := s.fund(id)
	if err != nil {
		return nil, err
	}

	perf, err := SimulatePerformance(fund, timeframe, s.newRand())
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("fund_id", id).
		Str("timeframe", string(perf.Timeframe)).
		Float64("total_return_pct", perf.Summary.TotalReturnPct).
		Msg("Simulated fund performance")

	return perf, nil
}

// Invest validates an investment into a fund
func (s *Service) Invest(id int, amount float64) (*Investment, error) {
	fund, err := s.fund(id)
	if err != nil {
		return nil, err
	}

	inv, err := ValidateInvestment(fund, amount)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("fund_id", id).Float64("amount", amount).Msg("Investment accepted")
	return inv, nil
}

// Insurance lists the insurance plans
func (s *Service) Insurance() []InsurancePlan {
	return s.lib.Insurance
}

// Gold returns the gold tracker report
func (s *Service) Gold() GoldReport {
	return BuildGoldReport(s.lib.Gold.Prices, s.lib.Gold.Notes)
}

// Stocks returns the stock market overview
func (s *Service) Stocks() StockOverview {
	st := s.lib.Stocks
	return BuildStockOverview(st.Indices, st.Top, st.Summary, st.Notes)
}

// Lessons returns the lessons of a category. Category names are matched case-insensitively
// with spaces treated as hyphens.
func (s *Service) Lessons(category string) ([]Lesson, error) {
	key := normalize(category)
	if key == "" {
		return nil, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}

	lessons, ok := s.lib.Lessons[key]
	if !ok {
		return nil, fmt.Errorf("lesson category %q: %w", category, domain.ErrNotFound)
	}
	return lessons, nil
}

// Categories returns the lesson categories in name order
func (s *Service) Categories() []string {
	names := make([]string, 0, len(s.lib.Lessons))
	for name := range s.lib.Lessons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VideoLessons returns, per category, the lessons that carry a video
func (s *Service) VideoLessons() map[string][]Lesson {
	out := make(map[string][]Lesson)
	for category, lessons := range s.lib.Lessons {
		for _, l := range lessons {
			if l.VideoID != "" {
				out[category] = append(out[category], l)
			}
		}
	}
	return out
}

func (s *Service) fund(id int) (Fund, error) {
	for _, f := range s.lib.Funds {
		if f.ID == id {
			return f, nil
		}
	}
	return Fund{}, fmt.Errorf("fund %d: %w", id, domain.ErrNotFound)
}

func normalize(category string) string {
	return strings.Join(strings.Fields(strings.ToLower(category)), "-")
}
