package di

import (
	"context"
	"fmt"
	"time"

	"github.com/finlit/finlit/internal/clients/gemini"
	"github.com/finlit/finlit/internal/config"
	"github.com/finlit/finlit/internal/events"
	"github.com/finlit/finlit/internal/modules/catalog"
	"github.com/finlit/finlit/internal/modules/chat"
	"github.com/finlit/finlit/internal/modules/content"
	"github.com/finlit/finlit/internal/modules/market"
	"github.com/finlit/finlit/internal/reliability"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const seedTimeout = 30 * time.Second

// InitializeServices creates the domain services and seeds the catalog
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	lib, err := content.Default()
	if err != nil {
		return fmt.Errorf("failed to load learning content: %w", err)
	}
	container.ContentService = content.NewService(lib, log)

	container.CatalogService = catalog.NewService(container.CatalogStore, container.EventManager, log)
	seedCtx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	defer cancel()
	if _, err := container.CatalogService.Seed(seedCtx, lessonSeeds(container.ContentService)); err != nil {
		// A remote catalog may be unreachable at boot; reads still report it
		log.Warn().Err(err).Msg("Failed to seed video catalog")
	}

	gameCfg := market.DefaultConfig()
	gameCfg.StartingCash = decimal.NewFromFloat(cfg.Game.StartingCash)
	container.Sessions = market.NewSessions(gameCfg, container.SessionRepo, container.EventManager, log)

	container.GeminiClient = gemini.NewClient(cfg.Chat.BaseURL, cfg.Chat.Model, cfg.Chat.APIKey, log)
	if cfg.Chat.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, chat replies will fail")
	} else {
		log.Info().Str("model", container.GeminiClient.Model()).Msg("Chat relay using Gemini")
	}
	container.ChatRelay = chat.NewRelay(container.GeminiClient, chat.Config{
		Timeout:        cfg.Chat.Timeout,
		AdvisorFraming: cfg.Chat.AdvisorFraming,
	}, container.EventManager, log)

	if cfg.Backup.Enabled {
		store, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			Bucket:          cfg.Backup.Bucket,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to create backup client: %w", err)
		}

		container.BackupService = reliability.NewBackupService(
			store,
			[]reliability.Snapshotter{container.CatalogDB, container.SessionsDB},
			cfg.DataDir,
			cfg.Backup.Retention,
			container.EventManager,
			log,
		)
	}

	log.Info().Msg("Services initialized")
	return nil
}
