package services

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/logging"
)

func newDatasetService(t *testing.T, cache CacheOptions) (*DashboardService, *dataset.Dataset) {
	t.Helper()
	ds, err := dataset.Open("testdata/day.csv")
	require.NoError(t, err)
	return NewDashboardService(ds, cache, logging.Discard(), newTestCollector()), ds
}

func TestDashboard_FullRange(t *testing.T) {
	svc, _ := newDatasetService(t, CacheOptions{})

	rng, err := svc.DefaultRange(background)
	require.NoError(t, err)
	assert.Equal(t, models.NewDateRange(day(2011, 1, 1), day(2011, 4, 15)), rng)

	d, err := svc.Dashboard(background, rng)
	require.NoError(t, err)

	assert.Equal(t, aggregate.Summary{Days: 5, Casual: 1271, Registered: 6350, Total: 7621}, d.Summary)
	assert.Equal(t, map[int]int64{1: 1349 + 3126, 2: 985 + 801 + 1360}, aggregate.Totals(d.Weather))
	assert.Equal(t, map[int]int64{1: 1349 + 985 + 801 + 1360, 2: 3126}, aggregate.Totals(d.Season))

	labels := make([]string, 0, len(d.Monthly))
	for _, m := range d.Monthly {
		labels = append(labels, m.Label)
	}
	assert.Equal(t, []string{"Jan-2011", "Feb-2011", "Mar-2011", "Apr-2011"}, labels)
	assert.Zero(t, d.Monthly[2].Total)

	require.Len(t, d.WorkingDay, 2)
	assert.Equal(t, "Weekend and Holiday", d.WorkingDay[0].Label)
	assert.Equal(t, int64(331+131+642), d.WorkingDay[0].Casual)
	assert.Equal(t, int64(1229+1313), d.WorkingDay[1].Registered)
}

func TestDashboard_InvertedRangeIsEmpty(t *testing.T) {
	svc, _ := newDatasetService(t, CacheOptions{})

	d, err := svc.Dashboard(background, models.NewDateRange(day(2011, 3, 1), day(2011, 1, 1)))
	require.NoError(t, err)

	assert.Equal(t, aggregate.Summary{}, d.Summary)
	assert.Empty(t, d.Weather)
	assert.Empty(t, d.Monthly)
	assert.Empty(t, d.Weekday)
	assert.Empty(t, d.WorkingDay)
	assert.Empty(t, d.Season)
}

func TestDashboard_OutOfRangeIsEmpty(t *testing.T) {
	svc, _ := newDatasetService(t, CacheOptions{})

	d, err := svc.Dashboard(background, models.NewDateRange(day(2015, 1, 1), day(2015, 12, 31)))
	require.NoError(t, err)
	assert.Zero(t, d.Summary.Days)
	assert.NotNil(t, d.Weather)
}

func TestDashboard_CacheHitReturnsIndependentCopy(t *testing.T) {
	ds, err := dataset.Open("testdata/day.csv")
	require.NoError(t, err)
	collector := newTestCollector()
	svc := NewDashboardService(ds, CacheOptions{Size: 8, TTL: time.Minute}, logging.Discard(), collector)

	rng := models.NewDateRange(day(2011, 1, 1), day(2011, 1, 31))
	first, err := svc.Dashboard(background, rng)
	require.NoError(t, err)
	first.Weather[0].Total = -1

	second, err := svc.Dashboard(background, rng)
	require.NoError(t, err)
	assert.NotEqual(t, int64(-1), second.Weather[0].Total)
	assert.Equal(t, int64(1349+985+801), second.Summary.Total)

	assert.Equal(t, float64(1), testutil.ToFloat64(collector.DashboardCacheTotal.WithLabelValues("miss")))
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.DashboardCacheTotal.WithLabelValues("hit")))
}

func TestResolveRange(t *testing.T) {
	svc, _ := newDatasetService(t, CacheOptions{})

	tests := []struct {
		name       string
		start, end *time.Time
		want       models.DateRange
	}{
		{"both missing", nil, nil, models.NewDateRange(day(2011, 1, 1), day(2011, 4, 15))},
		{"start only", ptr(day(2011, 2, 1)), nil, models.NewDateRange(day(2011, 2, 1), day(2011, 4, 15))},
		{"end only", nil, ptr(day(2011, 1, 2)), models.NewDateRange(day(2011, 1, 1), day(2011, 1, 2))},
		{"both given", ptr(day(2012, 1, 1)), ptr(day(2011, 1, 1)), models.NewDateRange(day(2012, 1, 1), day(2011, 1, 1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveRange(background, tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultRange_EmptyDataset(t *testing.T) {
	svc := NewDashboardService(dataset.New(nil), CacheOptions{}, logging.Discard(), newTestCollector())

	_, err := svc.DefaultRange(background)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))
	assert.Error(t, svc.HealthCheck(background))
}

func TestRepositorySource_MatchesDataset(t *testing.T) {
	collector := newTestCollector()
	repo := newTestRepository(t, collector)

	_, err := NewIngestionService(repo, logging.Discard(), collector).IngestFile(background, "testdata/day.csv", 2)
	require.NoError(t, err)

	fromRepo := NewDashboardService(NewRepositorySource(repo), CacheOptions{}, logging.Discard(), collector)
	fromFile, _ := newDatasetService(t, CacheOptions{})

	for _, rng := range []models.DateRange{
		models.NewDateRange(day(2011, 1, 1), day(2011, 4, 15)),
		models.NewDateRange(day(2011, 1, 2), day(2011, 2, 1)),
		models.NewDateRange(day(2011, 4, 15), day(2011, 1, 1)),
	} {
		want, err := fromFile.Dashboard(background, rng)
		require.NoError(t, err)
		got, err := fromRepo.Dashboard(background, rng)
		require.NoError(t, err)
		assert.Equal(t, want, got, rng.Key())
	}

	bounds, err := fromRepo.DefaultRange(background)
	require.NoError(t, err)
	assert.Equal(t, models.NewDateRange(day(2011, 1, 1), day(2011, 4, 15)), bounds)
}

func TestRepositorySource_EmptyTable(t *testing.T) {
	repo := newTestRepository(t, newTestCollector())
	src := NewRepositorySource(repo)

	_, err := src.Bounds(background)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))
}
