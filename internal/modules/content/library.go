// Package content serves the learning material behind the explorer pages: mutual funds,
// insurance plans, gold and stock market overviews and per-category lessons.
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embedded []byte

// Returns holds trailing cumulative returns in percent
type Returns struct {
	OneYear   float64 `yaml:"1y" json:"1y"`
	ThreeYear float64 `yaml:"3y" json:"3y"`
	FiveYear  float64 `yaml:"5y" json:"5y"`
}

// Fund is a mutual fund in the explorer
type Fund struct {
	ID            int      `yaml:"id" json:"id"`
	Name          string   `yaml:"name" json:"name"`
	Type          string   `yaml:"type" json:"type"`
	Returns       Returns  `yaml:"returns" json:"returns"`
	Risk          string   `yaml:"risk" json:"risk"`
	MinInvestment float64  `yaml:"min_investment" json:"min_investment"`
	Rating        float64  `yaml:"rating" json:"rating"`
	Companies     []string `yaml:"companies" json:"companies"`
	AIScore       int      `yaml:"ai_score" json:"ai_score"`
}

// InsurancePlan is an entry of the insurance catalog
type InsurancePlan struct {
	ID             int      `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	Benefits       []string `yaml:"benefits" json:"benefits"`
	Premium        float64  `yaml:"premium" json:"premium"`
	Coverage       string   `yaml:"coverage" json:"coverage"`
	Recommendation string   `yaml:"recommendation" json:"recommendation"`
}

// PricePoint is a labelled price observation
type PricePoint struct {
	Date  string  `yaml:"date" json:"date"`
	Price float64 `yaml:"price" json:"price"`
}

// IndexPoint is a labelled observation of the tracked market indices
type IndexPoint struct {
	Date   string  `yaml:"date" json:"date"`
	SP500  float64 `yaml:"sp500" json:"sp500"`
	Nasdaq float64 `yaml:"nasdaq" json:"nasdaq"`
}

// StockPick is a featured stock
type StockPick struct {
	Name           string  `yaml:"name" json:"name"`
	Price          float64 `yaml:"price" json:"price"`
	Change         float64 `yaml:"change" json:"change"`
	Recommendation string  `yaml:"recommendation" json:"recommendation"`
}

// Lesson is one entry of a learning track
type Lesson struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Content     string `yaml:"content,omitempty" json:"content,omitempty"`
	VideoID     string `yaml:"video_id,omitempty" json:"video_id,omitempty"`
}

// VideoURL returns the watch URL of the lesson video, or "" when the lesson has none
func (l Lesson) VideoURL() string {
	if l.VideoID == "" {
		return ""
	}
	return "https://www.youtube.com/watch?v=" + l.VideoID
}

type goldData struct {
	Prices []PricePoint `yaml:"prices"`
	Notes  []string     `yaml:"notes"`
}

type stockData struct {
	Indices []IndexPoint `yaml:"indices"`
	Top     []StockPick  `yaml:"top"`
	Summary string       `yaml:"summary"`
	Notes   []string     `yaml:"notes"`
}

// Library is the parsed content document
type Library struct {
	Funds     []Fund              `yaml:"funds"`
	Insurance []InsurancePlan     `yaml:"insurance"`
	Gold      goldData            `yaml:"gold"`
	Stocks    stockData           `yaml:"stocks"`
	Lessons   map[string][]Lesson `yaml:"lessons"`
}

// Load parses and validates a content document
func Load(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	if err := lib.validate(); err != nil {
		return nil, err
	}

	return &lib, nil
}

// Default returns the content compiled into the binary
func Default() (*Library, error) {
	return Load(embedded)
}

func (l *Library) validate() error {
	seen := make(map[int]bool, len(l.Funds))
	for _, f := range l.Funds {
		if seen[f.ID] {
			return fmt.Errorf("duplicate fund id %d", f.ID)
		}
		seen[f.ID] = true

		if strings.TrimSpace(f.Name) == "" {
			return fmt.Errorf("fund %d has no name", f.ID)
		}
		if f.MinInvestment <= 0 {
			return fmt.Errorf("fund %d has invalid minimum investment %v", f.ID, f.MinInvestment)
		}
	}

	for category, lessons := range l.Lessons {
		for i, lesson := range lessons {
			if strings.TrimSpace(lesson.Title) == "" {
				return fmt.Errorf("lesson %d in %s has no title", i, category)
			}
		}
	}

	return nil
}
