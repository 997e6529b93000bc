package main

import (
	"fmt"

	"petora-connect/internal/adapters/awscfg"
	"petora-connect/internal/adapters/storage/dynamo"
	pg "petora-connect/internal/adapters/storage/postgres"
	"petora-connect/internal/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema for the configured STORAGE_DRIVER",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := pg.Open(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pg.Migrate(ctx, db); err != nil {
			return err
		}
	case config.StorageDynamo:
		awsCfg, err := awscfg.Load(ctx, awscfg.Options{Region: cfg.AWSRegion, Endpoint: cfg.AWSEndpoint})
		if err != nil {
			return err
		}
		if err := dynamo.EnsureTables(ctx, dynamo.NewClient(awsCfg), dynamo.TableNames(cfg.DynamoTablePrefix)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("nothing to migrate for STORAGE_DRIVER=%s", cfg.StorageDriver)
	}

	log.Info("migration complete", map[string]any{"storage": cfg.StorageDriver})
	return nil
}
