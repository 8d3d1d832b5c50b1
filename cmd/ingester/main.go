package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/pgsuggest/server/internal/config"
	"codeberg.org/pgsuggest/server/internal/logger"
	"codeberg.org/pgsuggest/server/internal/storage"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ingester",
	Short: "Embed SQL query history into the pgsuggest vector store",
	Long: `ingester reads historical SQL queries, embeds each distinct query once
and stores it for similarity retrieval by the completion server.

Example usage:
  ingester init                                   # create the vector store schema
  ingester history                                # ingest pgAdmin query history
  ingester history --source file --path 'logs/*.sql'
  ingester stats                                  # show stored query count`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.LoadEnvironmentVariables()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger.Init(cfg.Environment)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd, historyCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// opens the configured store and makes sure its schema exists
func openStore(ctx context.Context) (storage.Backend, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	if err := store.Initialize(ctx); err != nil {
		store.Close() //nolint:errcheck,gosec
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	return store, nil
}
