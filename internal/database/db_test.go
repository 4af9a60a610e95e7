package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "catalog.db")

	db, err := New(Config{Path: path, Profile: ProfileStandard, Name: "catalog"})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Migrate())
	require.NoError(t, db.Migrate(), "re-applying the schema is a no-op")

	_, err = db.Conn().Exec("INSERT INTO videos (category, title, url, created_at, updated_at) VALUES ('banking', 'Intro', 'u', 1, 1)")
	require.NoError(t, err)

	assert.Equal(t, "catalog", db.Name())

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.SizeBytes, int64(0))
}

func TestNew_UnknownStoreSkipsMigrate(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "x.db"), Name: "x"})
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Migrate(), "unknown names are skipped")
}

func TestBuildConnectionString(t *testing.T) {
	conn := buildConnectionString("/data/sessions.db", ProfileCache)
	assert.Contains(t, conn, "/data/sessions.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(OFF)")
	assert.Contains(t, conn, "busy_timeout(5000)")

	conn = buildConnectionString("file:test?mode=memory", ProfileStandard)
	assert.Contains(t, conn, "file:test?mode=memory&_pragma=journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(NORMAL)")
	assert.Contains(t, conn, "&_pragma=foreign_keys(1)")
}

func TestApplySchema_UnknownName(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "s.db"), Name: "sessions"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, ApplySchema(db.Conn(), "nope"))
	assert.NoError(t, ApplySchema(db.Conn(), "sessions"))
}

func TestHealthAndMaintenance(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{Path: filepath.Join(dir, "sessions.db"), Profile: ProfileCache, Name: "sessions"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	assert.NoError(t, db.HealthCheck(ctx))
	assert.NoError(t, db.WALCheckpoint(""))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))

	dest := filepath.Join(dir, "copy.db")
	require.NoError(t, db.VacuumInto(ctx, dest))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWithTransaction(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "sessions.db"), Name: "sessions"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	insert := func(tx *sql.Tx, id string) error {
		_, err := tx.Exec("INSERT INTO game_sessions (id, state, created_at, updated_at) VALUES (?, x'00', 1, 1)", id)
		return err
	}

	require.NoError(t, WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		return insert(tx, "committed")
	}))

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		if err := insert(tx, "rolled-back"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	assert.ErrorContains(t, err, "transaction failed")

	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		_ = insert(tx, "panicked")
		panic("boom")
	})
	assert.ErrorContains(t, err, "panic in transaction")

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM game_sessions").Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
}
