package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/bargain-tracker/internal/config"
	"github.com/donaldgifford/bargain-tracker/internal/store"
	"github.com/donaldgifford/bargain-tracker/pkg/logger"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return runMigrate(cmd.Context(), cfg)
		},
	}
}

func runMigrate(parent context.Context, cfg *config.Config) error {
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Store.Backend != config.StoreBackendPostgres {
		log.Info("nothing to migrate", "backend", cfg.Store.Backend)
		return nil
	}

	ctx, cancel := context.WithTimeout(contextOrBackground(parent), 60*time.Second)
	defer cancel()

	s, err := store.NewPostgresStore(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer s.Close()

	log.Info("running migrations", "host", cfg.Database.Host)

	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	log.Info("migrations complete")
	return nil
}
