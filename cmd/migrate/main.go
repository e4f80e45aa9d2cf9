package main

import (
	"context"
	"time"

	"roomdesk/internal/directory"
	mongoMigration "roomdesk/internal/migrations/mongo"
	"roomdesk/pkg/config"
)

const (
	JobName    = "migrate"
	jobTimeout = 120 * time.Second
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()
	cfg.Log.Info("Starting migration job")

	if cfg.StorageBackend == config.BackendMongo || cfg.LockBackend == config.BackendMongo {
		cfg.SetMongo()
		if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
			cfg.Log.Fatal("Mongo migration failed", "error", err)
		}
	}

	cfg.SetDirectory()
	if err := directory.NewContactRepository(cfg.Client.Directory).Migrate(ctx); err != nil {
		cfg.Log.Fatal("Contact directory migration failed", "error", err)
	}

	cfg.Log.Info("Migration completed successfully")
}
