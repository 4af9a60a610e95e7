package market

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/finlit/finlit/internal/domain"
	"github.com/rs/zerolog"
)

// SessionRepository persists game sessions in sessions.db
type SessionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, log zerolog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log.With().Str("repo", "game_sessions").Logger(),
	}
}

// Save inserts or replaces a session snapshot
func (r *SessionRepository) Save(ctx context.Context, rec SessionRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO game_sessions (id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`, rec.ID, rec.State, rec.CreatedAt.Unix(), rec.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", rec.ID, err)
	}
	return nil
}

// Load returns a session snapshot or domain.ErrNotFound
func (r *SessionRepository) Load(ctx context.Context, id string) (*SessionRecord, error) {
	var rec SessionRecord
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx,
		"SELECT id, state, created_at, updated_at FROM game_sessions WHERE id = ?", id,
	).Scan(&rec.ID, &rec.State, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

// Delete removes a session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM game_sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// DeleteIdleBefore removes sessions last updated before cutoff
func (r *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM game_sessions WHERE updated_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge idle sessions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		r.log.Debug().Int64("count", affected).Time("cutoff", cutoff).Msg("Idle sessions deleted")
	}
	return int(affected), nil
}

// Count returns the number of stored sessions
func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
