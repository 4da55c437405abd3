package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/database"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// UsageRepository provides data access for daily usage records
type UsageRepository interface {
	UpsertRecordsBatch(ctx context.Context, records []models.UsageRecord) error
	ListRecords(ctx context.Context, filter RecordFilter) ([]models.UsageRecord, error)
	DateBounds(ctx context.Context) (models.DateRange, error)
	CountRecords(ctx context.Context) (int, error)
	HealthCheck(ctx context.Context) error
}

// RecordFilter selects records by inclusive date bounds; nil bounds are open
type RecordFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// usageRepository implements UsageRepository
type usageRepository struct {
	db      *database.DB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewUsageRepository creates a new usage repository
func NewUsageRepository(db *database.DB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) UsageRepository {
	return &usageRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

const upsertRecord = `
	INSERT INTO usage_records (
		record_date, season, weather_condition, weekday, is_working_day,
		casual_count, registered_count, total_count,
		created_at, updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (record_date) DO UPDATE SET
		season = excluded.season,
		weather_condition = excluded.weather_condition,
		weekday = excluded.weekday,
		is_working_day = excluded.is_working_day,
		casual_count = excluded.casual_count,
		registered_count = excluded.registered_count,
		total_count = excluded.total_count,
		updated_at = excluded.updated_at
`

// UpsertRecordsBatch writes records in a single transaction, replacing any
// record already stored for the same date
func (r *usageRepository) UpsertRecordsBatch(ctx context.Context, records []models.UsageRecord) error {
	if len(records) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.metrics.IngestionBatchSize.Observe(float64(len(records)))
		r.logger.Debug(ctx, "[REPO_BATCH_UPSERT] Batch upsert completed", logging.Fields{
			"count":       len(records),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.db.Rebind(upsertRecord))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, rec := range records {
		_, err := stmt.ExecContext(ctx,
			models.Day(rec.Date),
			rec.Season,
			rec.WeatherCondition,
			rec.Weekday,
			rec.IsWorkingDay,
			rec.CasualCount,
			rec.RegisteredCount,
			rec.TotalCount,
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", rec.Date.Format(models.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.metrics.IngestionRecordsTotal.Add(float64(len(records)))

	return nil
}

const recordColumns = `
	record_date, season, weather_condition, weekday, is_working_day,
	casual_count, registered_count, total_count
`

// ListRecords retrieves records ascending by date. An inverted range
// returns an empty slice without querying.
func (r *usageRepository) ListRecords(ctx context.Context, filter RecordFilter) ([]models.UsageRecord, error) {
	records := make([]models.UsageRecord, 0)

	if filter.StartDate != nil && filter.EndDate != nil &&
		models.NewDateRange(*filter.StartDate, *filter.EndDate).IsEmpty() {
		return records, nil
	}

	query := "SELECT " + recordColumns + " FROM usage_records WHERE 1=1"
	args := []interface{}{}

	if filter.StartDate != nil {
		query += " AND record_date >= ?"
		args = append(args, models.Day(*filter.StartDate))
	}

	if filter.EndDate != nil {
		query += " AND record_date <= ?"
		args = append(args, models.Day(*filter.EndDate))
	}

	query += " ORDER BY record_date"

	if err := r.db.SelectContext(ctx, "list_records", &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	for i := range records {
		records[i].Date = models.Day(records[i].Date)
	}

	return records, nil
}

// DateBounds returns the earliest and latest stored record dates
func (r *usageRepository) DateBounds(ctx context.Context) (models.DateRange, error) {
	// ORDER BY/LIMIT instead of MIN/MAX keeps the column's declared DATE
	// type, which sqlite needs to scan into time.Time
	var first, last time.Time

	err := r.db.GetContext(ctx, "first_record_date", &first,
		"SELECT record_date FROM usage_records ORDER BY record_date ASC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return models.DateRange{}, &NotFoundError{Resource: "usage_records", ID: "bounds"}
	}
	if err != nil {
		return models.DateRange{}, fmt.Errorf("failed to get first record date: %w", err)
	}

	err = r.db.GetContext(ctx, "last_record_date", &last,
		"SELECT record_date FROM usage_records ORDER BY record_date DESC LIMIT 1")
	if err != nil {
		return models.DateRange{}, fmt.Errorf("failed to get last record date: %w", err)
	}

	return models.NewDateRange(first, last), nil
}

// CountRecords returns the number of stored records
func (r *usageRepository) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, "count_records", &n, "SELECT COUNT(*) FROM usage_records"); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// HealthCheck performs a repository health check
func (r *usageRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
