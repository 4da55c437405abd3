package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// RecordSource supplies the base table the dashboard filters.
// Implementations must return freshly allocated slices.
type RecordSource interface {
	Bounds(ctx context.Context) (models.DateRange, error)
	Records(ctx context.Context, rng models.DateRange) ([]models.UsageRecord, error)
	HealthCheck(ctx context.Context) error
}

// CacheOptions sizes the recomputation cache; Size <= 0 disables it
type CacheOptions struct {
	Size int
	TTL  time.Duration
}

// DashboardService recomputes dashboard aggregates for a date range
type DashboardService struct {
	source  RecordSource
	cache   *expirable.LRU[string, aggregate.Dashboard]
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(source RecordSource, cacheOpts CacheOptions, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardService {
	s := &DashboardService{
		source:  source,
		logger:  logger,
		metrics: metricsCollector,
	}
	if cacheOpts.Size > 0 {
		s.cache = expirable.NewLRU[string, aggregate.Dashboard](cacheOpts.Size, nil, cacheOpts.TTL)
	}
	return s
}

// DefaultRange returns the full extent of the dataset
func (s *DashboardService) DefaultRange(ctx context.Context) (models.DateRange, error) {
	return s.source.Bounds(ctx)
}

// ResolveRange fills missing bounds from the dataset extent
func (s *DashboardService) ResolveRange(ctx context.Context, start, end *time.Time) (models.DateRange, error) {
	if start != nil && end != nil {
		return models.NewDateRange(*start, *end), nil
	}

	bounds, err := s.source.Bounds(ctx)
	if err != nil {
		return models.DateRange{}, err
	}
	if start != nil {
		bounds.Start = models.Day(*start)
	}
	if end != nil {
		bounds.End = models.Day(*end)
	}
	return bounds, nil
}

// Dashboard filters the base table to rng and recomputes every aggregate.
// An inverted or out-of-range interval yields empty aggregates.
func (s *DashboardService) Dashboard(ctx context.Context, rng models.DateRange) (aggregate.Dashboard, error) {
	key := rng.Key()
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			s.metrics.RecordCacheLookup(true)
			return cloneDashboard(d), nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	view, err := s.source.Records(ctx, rng)
	if err != nil {
		s.logger.Error(ctx, "[DASHBOARD_SOURCE_ERROR] Failed to read records", logging.Fields{
			"range": key,
		}, err)
		return aggregate.Dashboard{}, fmt.Errorf("failed to read records for %s: %w", key, err)
	}

	timer := s.metrics.NewTimer(s.metrics.RecomputeDuration)
	d := aggregate.Recompute(rng, view)
	elapsed := timer.ObserveDuration()
	s.metrics.ViewRecords.Observe(float64(len(view)))

	s.logger.Debug(ctx, "[DASHBOARD_RECOMPUTE] Dashboard recomputed", logging.Fields{
		"range":       key,
		"view_count":  len(view),
		"duration_us": elapsed.Microseconds(),
	})

	if s.cache != nil {
		s.cache.Add(key, cloneDashboard(d))
	}
	return d, nil
}

// Summary returns only the headline metrics for rng
func (s *DashboardService) Summary(ctx context.Context, rng models.DateRange) (aggregate.Summary, error) {
	d, err := s.Dashboard(ctx, rng)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return d.Summary, nil
}

// HealthCheck checks the underlying record source
func (s *DashboardService) HealthCheck(ctx context.Context) error {
	return s.source.HealthCheck(ctx)
}

func cloneDashboard(d aggregate.Dashboard) aggregate.Dashboard {
	d.Weather = append(make([]aggregate.CategoryTotal, 0, len(d.Weather)), d.Weather...)
	d.Monthly = append(make([]aggregate.MonthlyTotal, 0, len(d.Monthly)), d.Monthly...)
	d.Weekday = append(make([]aggregate.UserTypeTotal, 0, len(d.Weekday)), d.Weekday...)
	d.WorkingDay = append(make([]aggregate.UserTypeTotal, 0, len(d.WorkingDay)), d.WorkingDay...)
	d.Season = append(make([]aggregate.CategoryTotal, 0, len(d.Season)), d.Season...)
	return d
}

// repositorySource reads the base table from the database on every miss
type repositorySource struct {
	repo repository.UsageRepository
}

// NewRepositorySource adapts a UsageRepository to RecordSource
func NewRepositorySource(repo repository.UsageRepository) RecordSource {
	return &repositorySource{repo: repo}
}

func (r *repositorySource) Bounds(ctx context.Context) (models.DateRange, error) {
	rng, err := r.repo.DateBounds(ctx)
	var nf *repository.NotFoundError
	if errors.As(err, &nf) {
		return models.DateRange{}, fmt.Errorf("%w: %v", dataset.ErrEmptyDataset, err)
	}
	return rng, err
}

func (r *repositorySource) Records(ctx context.Context, rng models.DateRange) ([]models.UsageRecord, error) {
	start, end := rng.Start, rng.End
	return r.repo.ListRecords(ctx, repository.RecordFilter{StartDate: &start, EndDate: &end})
}

func (r *repositorySource) HealthCheck(ctx context.Context) error {
	return r.repo.HealthCheck(ctx)
}
