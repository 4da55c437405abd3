package services

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/repository"
	"bikeshare-dashboard/pkg/logging"
)

func TestIngestFile_StoresAllRecordsInBatches(t *testing.T) {
	collector := newTestCollector()
	repo := newTestRepository(t, collector)
	svc := NewIngestionService(repo, logging.Discard(), collector)

	result, err := svc.IngestFile(background, "testdata/day.csv", 2)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalRecords)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 5, result.StoredTotal)
	assert.Equal(t, float64(5), testutil.ToFloat64(collector.IngestionRecordsTotal))

	records, err := repo.ListRecords(background, repository.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, day(2011, 1, 1), records[0].Date)
	assert.Equal(t, day(2011, 4, 15), records[4].Date)
}

func TestIngestFile_IsIdempotent(t *testing.T) {
	collector := newTestCollector()
	repo := newTestRepository(t, collector)
	svc := NewIngestionService(repo, logging.Discard(), collector)

	_, err := svc.IngestFile(background, "testdata/day.csv", 0)
	require.NoError(t, err)
	result, err := svc.IngestFile(background, "testdata/day.csv", 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Batches)
	assert.Equal(t, 5, result.StoredTotal)
}

func TestIngestFile_MalformedFileWritesNothing(t *testing.T) {
	collector := newTestCollector()
	repo := newTestRepository(t, collector)
	svc := NewIngestionService(repo, logging.Discard(), collector)

	_, err := svc.IngestFile(background, "testdata/bad.csv", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")

	n, err := repo.CountRecords(background)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, float64(1), testutil.ToFloat64(collector.IngestionErrorsTotal.WithLabelValues("parse_error")))
}

func TestIngestFile_MissingFile(t *testing.T) {
	collector := newTestCollector()
	svc := NewIngestionService(newTestRepository(t, collector), logging.Discard(), collector)

	_, err := svc.IngestFile(background, "testdata/missing.csv", 10)
	assert.Error(t, err)
}
