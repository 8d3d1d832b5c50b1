package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"codeberg.org/pgsuggest/server/internal/config"
	"codeberg.org/pgsuggest/server/internal/history"
	"codeberg.org/pgsuggest/server/internal/ingest"
	"codeberg.org/pgsuggest/server/internal/llm"
	"codeberg.org/pgsuggest/server/internal/logger"
)

var historyFlags config.IngestFlags

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Embed and store historical SQL queries",
	PreRun: func(cmd *cobra.Command, args []string) {
		// flag defaults depend on config, which is only loaded by the root pre-run
		if !cmd.Flags().Changed("workers") {
			historyFlags.Workers = cfg.IngestWorkers
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := historyFlags.Resolve(cfg); err != nil {
			return err
		}

		if cfg.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required to embed queries")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return ingestHistory(ctx, historyFlags)
	},
}

func init() {
	historyFlags = config.IngestFlags{Source: config.SourcePgAdmin, Progress: true}
	config.BindIngestFlags(historyCmd.Flags(), &config.Config{}, &historyFlags)
}

func ingestHistory(ctx context.Context, flags config.IngestFlags) error {
	var src history.Source

	switch flags.Source {
	case config.SourceFile:
		src = history.NewFileSource(flags.Path)
	default:
		src = history.NewPgAdminSource(flags.Path)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	// the ingester embeds uncached; Redis only fronts the server's hot path
	providers, err := llm.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create providers: %w", err)
	}

	pipeline := ingest.NewPipeline(providers.Embedder, store, ingest.Config{
		Workers:      flags.Workers,
		EmbedTimeout: cfg.EmbeddingTimeout,
	})

	logger.Info("starting history ingestion",
		"source", src.Name(),
		"workers", flags.Workers,
		"store", cfg.VectorStore,
	)

	var progress ingest.ProgressFunc
	if flags.Progress {
		progress = newProgressBar()
	}

	report, err := pipeline.RunSource(ctx, src, progress)
	if report != nil {
		printReport(report)
	}

	if err != nil {
		return fmt.Errorf("history ingestion stopped: %w", err)
	}

	logger.Info("history ingestion complete",
		"inserted", report.Inserted,
		"already_present", report.AlreadyPresent,
		"failed", report.Failed(),
	)

	return nil
}

// renders pipeline progress; the bar is created once the total is known
func newProgressBar() ingest.ProgressFunc {
	var (
		bar *progressbar.ProgressBar
		mu  sync.Mutex
	)

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}

		bar.Set(done) //nolint:errcheck
	}
}

func printReport(report *ingest.Report) {
	fmt.Printf("\nRead:            %d\n", report.Received)
	fmt.Printf("Blank skipped:   %d\n", report.Blank)
	fmt.Printf("Distinct:        %d\n", report.Distinct)
	fmt.Printf("Inserted:        %d\n", report.Inserted)
	fmt.Printf("Already present: %d\n", report.AlreadyPresent)
	fmt.Printf("Embed failures:  %d\n", report.EmbedFailed)
	fmt.Printf("Store failures:  %d\n", report.StoreFailed)

	const maxShown = 10
	for i, failure := range report.Failures {
		if i == maxShown {
			fmt.Printf("  ... and %d more\n", len(report.Failures)-maxShown)
			break
		}

		fmt.Printf("  %v\n", failure)
	}
}
