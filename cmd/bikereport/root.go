package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/config"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

var (
	dataPath string
	startArg string
	endArg   string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "bikereport",
	Short: "Report bike sharing usage from the cleaned daily dataset",
	Long: `bikereport loads the cleaned daily bike sharing CSV, filters it to an
inclusive date range and prints or exports the dashboard aggregates.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset CSV (default is DATASET_PATH or ./day.csv)")
	rootCmd.PersistentFlags().StringVar(&startArg, "start", "", "inclusive start date YYYY-MM-DD (default is the first record)")
	rootCmd.PersistentFlags().StringVar(&endArg, "end", "", "inclusive end date YYYY-MM-DD (default is the last record)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stdout")
}

// newLogger returns a discarding logger unless --verbose is set
func newLogger(cfg *config.Config) *logging.StructuredLogger {
	if !verbose {
		return logging.Discard()
	}
	return logging.NewStructuredLogger("bikereport", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
}

// loadDashboard loads the dataset and recomputes the requested range
func loadDashboard(ctx context.Context) (aggregate.Dashboard, *logging.StructuredLogger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return aggregate.Dashboard{}, nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger := newLogger(cfg)

	path := dataPath
	if path == "" {
		path = cfg.Dataset.Path
	}

	start, err := parseDateFlag("start", startArg)
	if err != nil {
		return aggregate.Dashboard{}, nil, err
	}
	end, err := parseDateFlag("end", endArg)
	if err != nil {
		return aggregate.Dashboard{}, nil, err
	}

	ds, err := dataset.Open(path)
	if err != nil {
		return aggregate.Dashboard{}, nil, fmt.Errorf("loading dataset: %w", err)
	}

	svc := services.NewDashboardService(ds, services.CacheOptions{}, logger,
		metrics.NewCollector("bikereport", prometheus.NewRegistry()))

	rng, err := svc.ResolveRange(ctx, start, end)
	if err != nil {
		return aggregate.Dashboard{}, nil, fmt.Errorf("resolving date range: %w", err)
	}

	d, err := svc.Dashboard(ctx, rng)
	if err != nil {
		return aggregate.Dashboard{}, nil, err
	}
	return d, logger, nil
}

func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, value)
	}
	return &t, nil
}
