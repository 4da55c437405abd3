package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"

	"bikeshare-dashboard/internal/config"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/internal/services"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

func main() {
	// Parse command-line flags
	dataFile := flag.String("data-file", "", "Cleaned daily dataset CSV (defaults to DATASET_PATH)")
	batchSize := flag.Int("batch-size", services.DefaultBatchSize, "Number of records to upsert per transaction")
	migrateFirst := flag.Bool("migrate", true, "Apply schema migrations before ingesting")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *dataFile == "" {
		*dataFile = cfg.Dataset.Path
	}

	logger := logging.NewStructuredLogger("bikeshare-ingester", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[INGESTER_START] Starting usage data ingestion", logging.Fields{
		"data_file":  *dataFile,
		"batch_size": *batchSize,
		"driver":     cfg.Database.Driver,
	})

	metricsCollector := metrics.NewCollector("bikeshare_ingester", prometheus.NewRegistry())

	db, err := database.Open(cfg.DatabaseConfig(), logger, metricsCollector)
	if err != nil {
		logger.Fatal(ctx, "[INGESTER_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	if *migrateFirst {
		if err := db.Migrate(database.MigrateUp); err != nil {
			db.Close()
			logger.Fatal(ctx, "[INGESTER_ERROR] Failed to migrate schema", logging.Fields{}, err)
		}
	}

	repo := repository.NewUsageRepository(db, logger, metricsCollector)
	ingestionService := services.NewIngestionService(repo, logger, metricsCollector)

	result, err := ingestionService.IngestFile(ctx, *dataFile, *batchSize)
	if err != nil {
		db.Close()
		logger.Fatal(ctx, "[INGESTION_ERROR] Ingestion failed", logging.Fields{
			"data_file": *dataFile,
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("INGESTION COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Records Read:       %s\n", humanize.Comma(int64(result.TotalRecords)))
	fmt.Printf("Batches:            %d\n", result.Batches)
	fmt.Printf("Records Stored:     %s\n", humanize.Comma(int64(result.StoredTotal)))
	fmt.Printf("Duration:           %v\n", result.Duration)
	fmt.Printf("Records/Second:     %s\n", humanize.CommafWithDigits(float64(result.TotalRecords)/result.Duration.Seconds(), 2))
}
