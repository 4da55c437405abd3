package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"bikeshare-dashboard/internal/models"
)

// Required dataset columns, matched by header name
const (
	ColumnDate       = "dteday"
	ColumnSeason     = "season"
	ColumnWeather    = "weathersit"
	ColumnWeekday    = "weekday"
	ColumnWorkingDay = "workingday"
	ColumnCasual     = "casual"
	ColumnRegistered = "registered"
	ColumnTotal      = "cnt"
)

var requiredColumns = []string{
	ColumnDate, ColumnSeason, ColumnWeather, ColumnWeekday,
	ColumnWorkingDay, ColumnCasual, ColumnRegistered, ColumnTotal,
}

// LoadFile reads and parses a dataset file
func LoadFile(path string) ([]models.UsageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return records, nil
}

// Parse reads a header-led CSV into records sorted ascending by date.
// Any malformed row aborts the load.
func Parse(r io.Reader) ([]models.UsageRecord, error) {
	var records []models.UsageRecord
	err := Scan(r, func(raw models.RawUsageRecord) error {
		rec, err := raw.ToRecord()
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})

	for i := 1; i < len(records); i++ {
		if records[i].Date.Equal(records[i-1].Date) {
			return nil, fmt.Errorf("duplicate date %s", records[i].Date.Format(models.DateLayout))
		}
	}

	if records == nil {
		records = make([]models.UsageRecord, 0)
	}
	return records, nil
}

// Scan streams raw rows to fn in file order, stopping at the first error
func Scan(r io.Reader, fn func(models.RawUsageRecord) error) error {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("dataset is empty: missing header row")
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return err
	}

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}

		raw := models.RawUsageRecord{
			Line:             line,
			Date:             row[idx[ColumnDate]],
			Season:           row[idx[ColumnSeason]],
			WeatherCondition: row[idx[ColumnWeather]],
			Weekday:          row[idx[ColumnWeekday]],
			WorkingDay:       row[idx[ColumnWorkingDay]],
			Casual:           row[idx[ColumnCasual]],
			Registered:       row[idx[ColumnRegistered]],
			Total:            row[idx[ColumnTotal]],
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}
