package services

import (
	"context"
	"fmt"
	"time"

	"bikeshare-dashboard/internal/dataset"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/pkg/logging"
	"bikeshare-dashboard/pkg/metrics"
)

// DefaultBatchSize is used when a caller passes a non-positive batch size
const DefaultBatchSize = 500

// IngestionService loads the cleaned dataset file into the database
type IngestionService struct {
	repo    repository.UsageRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// IngestionResult contains ingestion statistics
type IngestionResult struct {
	TotalRecords int
	Batches      int
	StoredTotal  int
	Duration     time.Duration
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(repo repository.UsageRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *IngestionService {
	return &IngestionService{
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// IngestFile validates the whole file first, then upserts it in batches.
// A malformed file writes nothing.
func (s *IngestionService) IngestFile(ctx context.Context, path string, batchSize int) (*IngestionResult, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	timer := s.metrics.NewTimer(s.metrics.IngestionDuration)

	s.logger.Info(ctx, "[INGEST_START] Starting data ingestion", logging.Fields{
		"data_file":  path,
		"batch_size": batchSize,
		"stage":      "INITIALIZATION",
	})

	records, err := dataset.LoadFile(path)
	if err != nil {
		s.metrics.RecordIngestionError("parse_error")
		s.logger.Error(ctx, "[INGEST_PARSE_ERROR] Dataset file rejected", logging.Fields{
			"data_file": path,
			"stage":     "PARSING",
		}, err)
		return nil, err
	}

	result := &IngestionResult{TotalRecords: len(records)}

	for start := 0; start < len(records); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		if err := s.repo.UpsertRecordsBatch(ctx, records[start:end]); err != nil {
			s.metrics.RecordIngestionError("batch_error")
			s.logger.Error(ctx, "[INGEST_BATCH_ERROR] Batch upsert failed", logging.Fields{
				"batch":       result.Batches + 1,
				"first_date":  records[start].Date.Format(models.DateLayout),
				"batch_count": end - start,
				"stage":       "STORAGE",
			}, err)
			return nil, fmt.Errorf("failed to store batch %d: %w", result.Batches+1, err)
		}
		result.Batches++
	}

	stored, err := s.repo.CountRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count stored records: %w", err)
	}
	result.StoredTotal = stored
	result.Duration = timer.ObserveDuration()

	s.logger.Info(ctx, "[INGEST_COMPLETE] Data ingestion completed", logging.Fields{
		"total_records":      result.TotalRecords,
		"batches":            result.Batches,
		"stored_total":       result.StoredTotal,
		"duration_seconds":   result.Duration.Seconds(),
		"records_per_second": float64(result.TotalRecords) / result.Duration.Seconds(),
		"stage":              "COMPLETE",
	})

	return result, nil
}
