package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"bikeshare-dashboard/internal/config"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

func main() {
	direction := flag.String("direction", database.MigrateUp, "Migration direction: up or down")
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

	logger := logging.NewStructuredLogger("bikeshare-migrate", "1.0.0", logging.ParseLevel(cfg.Logging.Level))
	ctx := context.Background()

	db, err := database.Open(cfg.DatabaseConfig(), logger, metrics.NewCollector("bikeshare_migrate", prometheus.NewRegistry()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Running %s migrations against %s\n", *direction, cfg.Database.Driver)

	if err := db.Migrate(*direction); err != nil {
		logger.Error(ctx, "[MIGRATE_ERROR] Migration failed", logging.Fields{
			"direction": *direction,
		}, err)
		db.Close()
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}
