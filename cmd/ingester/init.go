package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/pgsuggest/server/internal/logger"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vector store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		logger.Info("vector store ready",
			"store", cfg.VectorStore,
			"dimension", cfg.EmbeddingDimension,
			"metric", cfg.DistanceMetric,
		)

		fmt.Printf("Vector store %q initialized (dimension %d, metric %s)\n",
			cfg.VectorStore, cfg.EmbeddingDimension, cfg.DistanceMetric)

		return nil
	},
}
