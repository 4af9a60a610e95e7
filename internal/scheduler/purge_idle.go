package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// SessionPurger removes game sessions idle for longer than ttl
type SessionPurger interface {
	PurgeIdle(ctx context.Context, ttl time.Duration) (int, error)
}

// ConversationPurger removes chat conversations idle for longer than ttl
type ConversationPurger interface {
	PurgeIdle(ttl time.Duration) int
}

// PurgeIdleJob drops idle game sessions and chat conversations
type PurgeIdleJob struct {
	sessions      SessionPurger
	conversations ConversationPurger
	ttl           time.Duration
	log           zerolog.Logger
}

// NewPurgeIdleJob creates a new PurgeIdleJob. Either purger may be nil.
func NewPurgeIdleJob(sessions SessionPurger, conversations ConversationPurger, ttl time.Duration, log zerolog.Logger) *PurgeIdleJob {
	return &PurgeIdleJob{
		sessions:      sessions,
		conversations: conversations,
		ttl:           ttl,
		log:           log.With().Str("job", "purge_idle").Logger(),
	}
}

// Name returns the job name
func (j *PurgeIdleJob) Name() string {
	return "purge_idle"
}

// Run executes the purge
func (j *PurgeIdleJob) Run() error {
	var sessions, conversations int

	if j.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := j.sessions.PurgeIdle(ctx, j.ttl)
		if err != nil {
			return fmt.Errorf("failed to purge idle sessions: %w", err)
		}
		sessions = n
	}

	if j.conversations != nil {
		conversations = j.conversations.PurgeIdle(j.ttl)
	}

	j.log.Info().
		Int("sessions", sessions).
		Int("conversations", conversations).
		Dur("ttl", j.ttl).
		Msg("Idle purge completed")

	return nil
}
