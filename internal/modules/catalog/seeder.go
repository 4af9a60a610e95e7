package catalog

import (
	"context"

	"github.com/finlit/finlit/internal/events"
)

// SeedVideo is a lesson to preload into the catalog
type SeedVideo struct {
	Title string
	URL   string
}

// Seed fills empty categories with the given lessons. Categories that already hold
// videos are left alone. Returns the number of videos inserted.
func (s *Service) Seed(ctx context.Context, seeds map[string][]SeedVideo) (int, error) {
	inserted := 0
	seeded := 0

	for category, videos := range seeds {
		existing, err := s.ListVideos(ctx, category)
		if err != nil {
			return inserted, err
		}
		if len(existing) > 0 {
			s.log.Debug().Str("category", category).Int("videos", len(existing)).Msg("Category already populated, skipping seed")
			continue
		}

		for _, v := range videos {
			if err := s.store.Put(ctx, NormalizeCategory(category), v.Title, v.URL); err != nil {
				return inserted, err
			}
			inserted++
		}
		seeded++
	}

	if inserted > 0 {
		s.log.Info().Int("categories", seeded).Int("videos", inserted).Msg("Catalog seeded")
		if s.emitter != nil {
			s.emitter.EmitTyped("catalog", &events.CatalogSeededData{Categories: seeded, Videos: inserted})
		}
	}
	return inserted, nil
}
