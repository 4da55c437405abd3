package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

func newTestRepository(t *testing.T) UsageRepository {
	t.Helper()

	logger := logging.Discard()
	collector := metrics.NewCollector("bikeshare_test", prometheus.NewRegistry())

	db, err := database.Open(&database.Config{
		Driver:       database.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "usage.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger, collector)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(database.MigrateUp))
	require.NoError(t, db.Migrate(database.MigrateUp), "second up must be a no-op")

	return NewUsageRepository(db, logger, collector)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(date time.Time, casual, registered int64) models.UsageRecord {
	return models.UsageRecord{
		Date:             date,
		Season:           1,
		WeatherCondition: 2,
		Weekday:          int(date.Weekday()),
		IsWorkingDay:     true,
		CasualCount:      casual,
		RegisteredCount:  registered,
		TotalCount:       casual + registered,
	}
}

func TestUsageRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.UpsertRecordsBatch(ctx, []models.UsageRecord{
		record(day(2021, 1, 3), 3, 27),
		record(day(2021, 1, 1), 1, 9),
		record(day(2021, 1, 2), 2, 18),
	}))

	n, err := repo.CountRecords(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := repo.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.Equal(day(2021, 1, 1)))
	assert.Equal(t, int64(10), all[0].TotalCount)
	assert.True(t, all[0].IsWorkingDay)
	assert.Equal(t, 2, all[0].WeatherCondition)

	start, end := day(2021, 1, 2), day(2021, 1, 3)
	view, err := repo.ListRecords(ctx, RecordFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, int64(50), view[0].TotalCount+view[1].TotalCount)

	bounds, err := repo.DateBounds(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-01..2021-01-03", bounds.Key())
}

func TestUsageRepository_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.UpsertRecordsBatch(ctx, []models.UsageRecord{record(day(2021, 1, 1), 1, 1)}))
	require.NoError(t, repo.UpsertRecordsBatch(ctx, []models.UsageRecord{record(day(2021, 1, 1), 5, 5)}))

	all, err := repo.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(10), all[0].TotalCount)
}

func TestUsageRepository_InvertedRangeIsEmpty(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	require.NoError(t, repo.UpsertRecordsBatch(ctx, []models.UsageRecord{record(day(2021, 1, 1), 1, 1)}))

	start, end := day(2021, 1, 2), day(2021, 1, 1)
	view, err := repo.ListRecords(ctx, RecordFilter{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.NotNil(t, view)
	assert.Empty(t, view)
}

func TestUsageRepository_EmptyTable(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.DateBounds(ctx)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.False(t, nf.IsTransient())

	require.NoError(t, repo.UpsertRecordsBatch(ctx, nil))
	require.NoError(t, repo.HealthCheck(ctx))
}
