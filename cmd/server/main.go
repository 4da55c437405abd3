package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"bikeshare-dashboard/internal/config"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/handlers"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewStructuredLogger("bikeshare-api", version, logging.ParseLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "[STARTUP] Starting bike sharing dashboard server", logging.Fields{
		"version":        version,
		"server_host":    cfg.Server.Host,
		"server_port":    cfg.Server.Port,
		"dataset_source": cfg.Dataset.Source,
	})

	metricsCollector := metrics.NewCollector("bikeshare", prometheus.DefaultRegisterer)

	// Load the base table once; it is shared read-only by every request
	source, closeSource, err := openSource(ctx, cfg, logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[STARTUP_ERROR] Failed to load usage records", logging.Fields{
			"dataset_source": cfg.Dataset.Source,
		}, err)
	}
	defer closeSource()

	dashboardService := services.NewDashboardService(source, services.CacheOptions{
		Size: cfg.Cache.Size,
		TTL:  cfg.Cache.TTL,
	}, logger, metricsCollector)
	exportService := services.NewExportService(logger)

	dashboardHandler := handlers.NewDashboardHandler(dashboardService, exportService, logger, metricsCollector)

	router := mux.NewRouter()
	router.Use(handlers.RequestLogger(logger))
	dashboardHandler.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "[SERVER_START] HTTP server listening", logging.Fields{
			"address": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "[SHUTDOWN] Shutting down server...", logging.Fields{})

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "[SHUTDOWN_ERROR] Server stopped with error", logging.Fields{}, err)
		closeSource()
		os.Exit(1)
	}

	logger.Info(ctx, "[SHUTDOWN_COMPLETE] Server stopped", logging.Fields{})
}

// openSource builds the configured record source and a func releasing it
func openSource(ctx context.Context, cfg *config.Config, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (services.RecordSource, func(), error) {
	if cfg.Dataset.Source == config.SourceDatabase {
		db, err := database.Open(cfg.DatabaseConfig(), logger, metricsCollector)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewUsageRepository(db, logger, metricsCollector)

		n, err := repo.CountRecords(ctx)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		metricsCollector.DatasetRecords.Set(float64(n))
		logger.Info(ctx, "[DATASET_READY] Reading usage records from database", logging.Fields{
			"driver":       cfg.Database.Driver,
			"record_count": n,
		})
		return services.NewRepositorySource(repo), func() { db.Close() }, nil
	}

	ds, err := dataset.Open(cfg.Dataset.Path)
	if err != nil {
		return nil, nil, err
	}
	if ds.Len() == 0 {
		return nil, nil, fmt.Errorf("%s: %w", cfg.Dataset.Path, dataset.ErrEmptyDataset)
	}
	metricsCollector.DatasetRecords.Set(float64(ds.Len()))

	bounds, _ := ds.Bounds(ctx)
	logger.Info(ctx, "[DATASET_READY] Dataset loaded", logging.Fields{
		"path":         cfg.Dataset.Path,
		"record_count": ds.Len(),
		"first_date":   bounds.Start,
		"last_date":    bounds.End,
	})
	return ds, func() {}, nil
}
