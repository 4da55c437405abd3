package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

func newTestCollector() *metrics.Collector {
	return metrics.NewCollector("bikeshare_test", prometheus.NewRegistry())
}

func newTestRepository(t *testing.T, collector *metrics.Collector) repository.UsageRepository {
	t.Helper()

	logger := logging.Discard()
	db, err := database.Open(&database.Config{
		Driver:       database.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "usage.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(database.MigrateUp))

	return repository.NewUsageRepository(db, logger, collector)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

var background = context.Background()
