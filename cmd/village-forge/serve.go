package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/village-forge/internal/api"
	"github.com/joestump/village-forge/internal/build"
	"github.com/joestump/village-forge/internal/llm"
	"github.com/joestump/village-forge/internal/store"
	"github.com/joestump/village-forge/internal/village"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadEnv()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			database, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			gen, err := llm.New(cfg, logger)
			if err != nil {
				return err
			}
			catalog, err := village.LoadCatalog(cfg.Catalog.Path)
			if err != nil {
				return err
			}

			router := api.NewRouter(api.Deps{
				Generator:    gen,
				Store:        store.NewGenerationStore(database),
				Catalog:      catalog,
				Sampling:     llm.SamplingFromConfig(cfg.LLM.Sampling),
				NullSentinel: cfg.Prompt.NullSentinel,
				Logger:       logger,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening",
					zap.String("addr", cfg.HTTP.Addr),
					zap.String("provider", cfg.LLM.Provider),
					zap.String("model", cfg.LLM.Model),
					zap.String("version", build.Version))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
