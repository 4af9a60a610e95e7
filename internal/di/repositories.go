package di

import (
	"fmt"

	"github.com/finlit/finlit/internal/clients/firestore"
	"github.com/finlit/finlit/internal/config"
	"github.com/finlit/finlit/internal/modules/catalog"
	"github.com/finlit/finlit/internal/modules/market"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories and selects the catalog store
func InitializeRepositories(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.SessionRepo = market.NewSessionRepository(container.SessionsDB.Conn(), log)

	switch cfg.Catalog.Backend {
	case config.CatalogBackendFirestore:
		container.FirestoreClient = firestore.NewClient(
			cfg.Catalog.FirestoreBaseURL,
			cfg.Catalog.FirestoreProjectID,
			cfg.Catalog.FirestoreAPIKey,
			log,
		)
		container.CatalogStore = newFirestoreCatalogStore(container.FirestoreClient)
		log.Info().Str("project", cfg.Catalog.FirestoreProjectID).Msg("Using Firestore catalog store")
	default:
		container.CatalogRepo = catalog.NewRepository(container.CatalogDB.Conn(), log)
		container.CatalogStore = container.CatalogRepo
	}

	log.Info().Msg("Repositories initialized")
	return nil
}
