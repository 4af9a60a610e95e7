package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/finlit/finlit/internal/domain"
	"github.com/finlit/finlit/internal/events"
	"github.com/rs/zerolog"
)

// EventEmitter publishes typed events
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// Shelf is one category with its videos
type Shelf struct {
	Category string  `json:"category"`
	Videos   []Video `json:"videos"`
}

// Service reads and writes the video catalog
type Service struct {
	store   Store
	emitter EventEmitter
	log     zerolog.Logger
}

// NewService creates a catalog service. emitter may be nil.
func NewService(store Store, emitter EventEmitter, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		emitter: emitter,
		log:     log.With().Str("service", "catalog").Logger(),
	}
}

// NormalizeCategory lowercases a category and joins words with hyphens
func NormalizeCategory(category string) string {
	return strings.Join(strings.Fields(strings.ToLower(category)), "-")
}

// ListVideos returns the videos of a category ordered by title. An empty category
// yields an empty slice. Store failures are logged and wrapped in domain.ErrFetch.
func (s *Service) ListVideos(ctx context.Context, category string) ([]Video, error) {
	category = NormalizeCategory(category)
	if category == "" {
		return nil, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}

	records, err := s.store.List(ctx, category)
	if err != nil {
		s.log.Error().Err(err).Str("category", category).Msg("Failed to fetch videos")
		return nil, fmt.Errorf("failed to fetch videos for %s: %w: %w", category, domain.ErrFetch, err)
	}

	if len(records) == 0 {
		s.log.Warn().Str("category", category).Msg("No videos found in category")
	}

	videos := make([]Video, 0, len(records))
	for _, rec := range records {
		videos = append(videos, newVideo(category, rec))
	}
	slices.SortStableFunc(videos, func(a, b Video) int {
		return strings.Compare(a.Title, b.Title)
	})

	return videos, nil
}

// AddVideo inserts or replaces the video keyed by (category, title)
func (s *Service) AddVideo(ctx context.Context, category, title, url string) (*Video, error) {
	category = NormalizeCategory(category)
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)

	if category == "" {
		return nil, fmt.Errorf("category is required: %w", domain.ErrInvalidInput)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}

	if err := s.store.Put(ctx, category, title, url); err != nil {
		s.log.Error().Err(err).Str("category", category).Str("title", title).Msg("Failed to add video")
		return nil, fmt.Errorf("failed to add video %q: %w: %w", title, domain.ErrFetch, err)
	}

	s.log.Info().Str("category", category).Str("title", title).Msg("Video added")
	if s.emitter != nil {
		s.emitter.EmitTyped("catalog", &events.VideoAddedData{Category: category, Title: title})
	}

	v := newVideo(category, Record{ID: title, Title: title, URL: url})
	return &v, nil
}

// Library returns every category with its videos
func (s *Service) Library(ctx context.Context) ([]Shelf, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch categories")
		return nil, fmt.Errorf("failed to fetch categories: %w: %w", domain.ErrFetch, err)
	}

	shelves := make([]Shelf, 0, len(categories))
	for _, category := range categories {
		videos, err := s.ListVideos(ctx, category)
		if err != nil {
			return nil, err
		}
		shelves = append(shelves, Shelf{Category: NormalizeCategory(category), Videos: videos})
	}
	return shelves, nil
}
