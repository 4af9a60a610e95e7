package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/finlit/finlit/internal/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDatabases(t *testing.T) map[string]*database.DB {
	t.Helper()
	dir := t.TempDir()

	out := map[string]*database.DB{}
	for name, profile := range map[string]database.Profile{
		"catalog":  database.ProfileStandard,
		"sessions": database.ProfileCache,
	} {
		db, err := database.New(database.Config{Path: filepath.Join(dir, name+".db"), Profile: profile, Name: name})
		require.NoError(t, err)
		require.NoError(t, db.Migrate())
		t.Cleanup(func() { db.Close() })
		out[name] = db
	}
	return out
}

func TestCheckDatabasesJob(t *testing.T) {
	dbs := openDatabases(t)
	dbs["missing"] = nil

	job := NewCheckDatabasesJob(dbs, zerolog.Nop())
	assert.Equal(t, "check_databases", job.Name())
	assert.NoError(t, job.Run())
}

func TestCheckWALCheckpointsJob(t *testing.T) {
	job := NewCheckWALCheckpointsJob(openDatabases(t), zerolog.Nop())
	assert.Equal(t, "check_wal_checkpoints", job.Name())
	assert.NoError(t, job.Run())

	assert.NoError(t, NewCheckWALCheckpointsJob(nil, zerolog.Nop()).Run())
}

type fakeSessions struct {
	ttl time.Duration
	n   int
	err error
}

func (f *fakeSessions) PurgeIdle(ctx context.Context, ttl time.Duration) (int, error) {
	f.ttl = ttl
	return f.n, f.err
}

type fakeConversations struct {
	ttl time.Duration
}

func (f *fakeConversations) PurgeIdle(ttl time.Duration) int {
	f.ttl = ttl
	return 2
}

func TestPurgeIdleJob(t *testing.T) {
	sessions := &fakeSessions{n: 3}
	conversations := &fakeConversations{}

	job := NewPurgeIdleJob(sessions, conversations, time.Hour, zerolog.Nop())
	assert.Equal(t, "purge_idle", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, time.Hour, sessions.ttl)
	assert.Equal(t, time.Hour, conversations.ttl)
}

func TestPurgeIdleJob_Error(t *testing.T) {
	job := NewPurgeIdleJob(&fakeSessions{err: errors.New("disk")}, nil, time.Hour, zerolog.Nop())
	assert.ErrorContains(t, job.Run(), "disk")

	assert.NoError(t, NewPurgeIdleJob(nil, nil, time.Hour, zerolog.Nop()).Run())
}
