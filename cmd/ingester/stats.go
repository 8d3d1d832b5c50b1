package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many queries the vector store holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		count, err := store.Count(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to count stored queries: %w", err)
		}

		fmt.Printf("Store:     %s\n", cfg.VectorStore)
		fmt.Printf("Metric:    %s\n", cfg.DistanceMetric)
		fmt.Printf("Dimension: %d\n", cfg.EmbeddingDimension)
		fmt.Printf("Queries:   %d\n", count)

		return nil
	},
}
