package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/finlit/finlit/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDatabases(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{DataDir: tmpDir}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	defer container.Close()

	assert.NotNil(t, container.CatalogDB)
	assert.NotNil(t, container.SessionsDB)

	assert.FileExists(t, filepath.Join(tmpDir, "catalog.db"))
	assert.FileExists(t, filepath.Join(tmpDir, "sessions.db"))

	dbs := container.Databases()
	assert.Len(t, dbs, 2)
	assert.Contains(t, dbs, "catalog")
	assert.Contains(t, dbs, "sessions")
}

func TestInitializeDatabases_InvalidPath(t *testing.T) {
	// A regular file where the data directory should be fails even for root
	dataDir := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(dataDir, []byte("not a directory"), 0644))
	cfg := &config.Config{DataDir: dataDir}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestInitializeDatabases_SchemaMigration(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	ctx := context.Background()
	var count int
	err = container.CatalogDB.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = container.SessionsDB.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM game_sessions").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for name, db := range container.Databases() {
		assert.NoError(t, db.HealthCheck(ctx), name)
	}
}
