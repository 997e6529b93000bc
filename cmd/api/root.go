package main

import (
	"petora-connect/internal/config"
	"petora-connect/internal/platform/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "petora",
	Short: "Petora Connect API server",
	Long: `Petora Connect: marketplace de adopción de mascotas.

Subcommands:
  serve   - levanta el servidor HTTP
  migrate - crea el esquema (PostgreSQL) o las tablas (DynamoDB)

La configuración sale de config.yml y de variables de entorno.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// setup carga config y logger; lo comparten todos los subcomandos.
func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	return cfg, log, nil
}
