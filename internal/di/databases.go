package di

import (
	"fmt"
	"path/filepath"

	"github.com/finlit/finlit/internal/config"
	"github.com/finlit/finlit/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens both databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// catalog.db - lesson videos per category
	catalogDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "catalog.db"),
		Profile: database.ProfileStandard,
		Name:    "catalog",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize catalog database: %w", err)
	}
	container.CatalogDB = catalogDB

	// sessions.db - market game snapshots, disposable
	sessionsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "sessions.db"),
		Profile: database.ProfileCache,
		Name:    "sessions",
	})
	if err != nil {
		catalogDB.Close()
		return nil, fmt.Errorf("failed to initialize sessions database: %w", err)
	}
	container.SessionsDB = sessionsDB

	for _, db := range []*database.DB{catalogDB, sessionsDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
