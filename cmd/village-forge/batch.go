package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joestump/village-forge/internal/batch"
	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/store"
	"github.com/joestump/village-forge/internal/village"
)

func newBatchCmd() *cobra.Command {
	var (
		count       int
		concurrency int
		outputDir   string
		noStore     bool
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate a batch of random village scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("count") {
				cfg.Batch.Count = count
			}
			if cmd.Flags().Changed("concurrency") {
				cfg.Batch.Concurrency = concurrency
			}
			if cmd.Flags().Changed("output-dir") {
				cfg.Batch.OutputDir = outputDir
			}

			gen, err := llm.New(cfg, logger)
			if err != nil {
				return err
			}
			catalog, err := village.LoadCatalog(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			var st store.GenerationStoreIface
			if !noStore {
				database, err := openDB(cfg)
				if err != nil {
					return err
				}
				defer func() { _ = database.Close() }()
				st = store.NewGenerationStore(database)
			}

			runner := batch.NewRunner(gen, st, catalog, village.NewGenerator(catalog, nil), batch.Options{
				Count:       cfg.Batch.Count,
				Interval:    cfg.Batch.Interval,
				Concurrency: cfg.Batch.Concurrency,
				OutputDir:   cfg.Batch.OutputDir,
				Sampling:    llm.SamplingFromConfig(cfg.LLM.Sampling),
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := runner.Run(ctx)
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%d successful, %d failed of %d\n",
					res.SuccessfulGenerations, res.FailedGenerations, res.TotalAttempts)
			}
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of scenarios to generate")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "generations in flight at once")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for result files")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record generations in the database")
	return cmd
}
