package dataset

import (
	"context"
	"errors"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/models"
)

// ErrEmptyDataset is returned when bounds are requested from a dataset without rows
var ErrEmptyDataset = errors.New("dataset has no records")

// Dataset is the immutable base table loaded once per process.
// Safe for concurrent readers.
type Dataset struct {
	records []models.UsageRecord
	bounds  models.DateRange
}

// New copies records, sorted ascending by date, into a Dataset
func New(records []models.UsageRecord) *Dataset {
	own := make([]models.UsageRecord, len(records))
	copy(own, records)

	d := &Dataset{records: own}
	if len(own) > 0 {
		first, last := own[0].Date, own[0].Date
		for _, r := range own[1:] {
			if r.Date.Before(first) {
				first = r.Date
			}
			if r.Date.After(last) {
				last = r.Date
			}
		}
		d.bounds = models.NewDateRange(first, last)
	}
	return d
}

// Open loads a dataset file
func Open(path string) (*Dataset, error) {
	records, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(records), nil
}

// Len returns the number of records
func (d *Dataset) Len() int {
	return len(d.records)
}

// Bounds returns the minimum and maximum record dates
func (d *Dataset) Bounds(ctx context.Context) (models.DateRange, error) {
	if len(d.records) == 0 {
		return models.DateRange{}, ErrEmptyDataset
	}
	return d.bounds, nil
}

// Records returns a freshly allocated view of the records inside rng
func (d *Dataset) Records(ctx context.Context, rng models.DateRange) ([]models.UsageRecord, error) {
	return aggregate.FilterRange(d.records, rng), nil
}

// HealthCheck reports whether the dataset holds any records
func (d *Dataset) HealthCheck(ctx context.Context) error {
	if len(d.records) == 0 {
		return ErrEmptyDataset
	}
	return nil
}
