package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository stores videos in catalog.db
type Repository struct {
	db  *sql.DB
	now func() time.Time
	log zerolog.Logger
}

// NewRepository creates a new catalog repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		now: time.Now,
		log: log.With().Str("repo", "videos").Logger(),
	}
}

// List returns the videos of a category ordered by title
func (r *Repository) List(ctx context.Context, category string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT title, url FROM videos WHERE category = ? ORDER BY title",
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos for %s: %w", category, err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Title, &rec.URL); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		rec.ID = rec.Title
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return records, nil
}

// Put inserts or replaces the video keyed by (category, title)
func (r *Repository) Put(ctx context.Context, category, title, url string) error {
	now := r.now().Unix()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (category, title, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(category, title) DO UPDATE SET
			url = excluded.url,
			updated_at = excluded.updated_at
	`, category, title, url, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert video %s/%s: %w", category, title, err)
	}
	return nil
}

// Categories returns every category holding at least one video
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT DISTINCT category FROM videos ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}
