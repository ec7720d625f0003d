package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/ll97/internal/config"
	"github.com/stwalsh4118/ll97/internal/dataset"
	"github.com/stwalsh4118/ll97/internal/handlers"
	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/services"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve building projections over HTTP",
		Long: `Builds the dataset in the background and serves it read-only over a JSON
API. /health/ready reports 503 until the build has finished; the process
exits if the build fails.`,
		Example: `  ll97 serve --ll97-dataset ll97.csv --ll84-dataset ll84.csv \
    --carbon-emissions-by-building-type thresholds.csv --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, a)
		},
	}

	addInputFlags(cmd.Flags())
	cmd.Flags().String("port", "", "HTTP listen port")

	return cmd
}

func runServe(cmd *cobra.Command, a *app) error {
	keys := inputFlagKeys()
	keys["port"] = config.KeyPort

	cfg, err := a.load(cmd, keys)
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	log := a.logger(cfg, cmd.OutOrStdout())
	log.Info("Starting LL97 API", map[string]interface{}{
		"version":     Version,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := cmd.Context()
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	var pinger handlers.Pinger
	if db != nil {
		defer db.Close()
		pinger = db
	}

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.Init()

	store := dataset.NewStore()
	router := handlers.NewRouter(handlers.RouterConfig{
		Log:         log,
		CORSOrigins: cfg.CORS.Origins,
		Health:      handlers.NewHealthHandler(pinger, store, cfg.Server.Env),
		Projections: handlers.NewProjectionHandler(services.NewProjectionService(store, log)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		buildLog := log.WithRunID(uuid.NewString())
		report, err := buildDataset(gctx, cfg, db, buildLog)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("dataset build failed: %w", err)
		}
		store.Set(dataset.NewIndex(report.Result.Projections))
		buildLog.Info("Dataset ready", map[string]interface{}{
			"records": store.Len(),
		})
		return nil
	})

	g.Go(func() error {
		// Wait for a signal or for either task above to fail
		<-gctx.Done()
		log.Info("Shutting down server...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", err, map[string]interface{}{
				"timeout": shutdownTimeout.String(),
			})
			return err
		}
		return nil
	})

	err = g.Wait()
	if err != nil {
		log.Error("Server stopped with error", err, nil)
	} else {
		log.Info("Server exited", nil)
	}
	return err
}
