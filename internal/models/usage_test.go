package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRaw() RawUsageRecord {
	return RawUsageRecord{
		Line:             2,
		Date:             "2011-01-01",
		Season:           "1",
		WeatherCondition: "2",
		Weekday:          "6",
		WorkingDay:       "0",
		Casual:           "331",
		Registered:       "654",
		Total:            "985",
	}
}

// TestRawUsageRecord_ToRecord tests the conversion logic
func TestRawUsageRecord_ToRecord(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*RawUsageRecord)
		wantField   string
		checkValues func(*testing.T, UsageRecord)
	}{
		{
			name: "valid record",
			checkValues: func(t *testing.T, rec UsageRecord) {
				assert.True(t, rec.Date.Equal(time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC)))
				assert.Equal(t, 1, rec.Season)
				assert.Equal(t, 2, rec.WeatherCondition)
				assert.Equal(t, 6, rec.Weekday)
				assert.False(t, rec.IsWorkingDay)
				assert.Equal(t, int64(331), rec.CasualCount)
				assert.Equal(t, int64(654), rec.RegisteredCount)
				assert.Equal(t, int64(985), rec.TotalCount)
			},
		},
		{
			name:   "surrounding whitespace is tolerated",
			mutate: func(r *RawUsageRecord) { r.Date = " 2011-01-01 "; r.WorkingDay = " 1" },
			checkValues: func(t *testing.T, rec UsageRecord) {
				assert.True(t, rec.IsWorkingDay)
			},
		},
		{
			name:      "invalid date format",
			mutate:    func(r *RawUsageRecord) { r.Date = "01/01/2011" },
			wantField: "dteday",
		},
		{
			name:      "non integer season",
			mutate:    func(r *RawUsageRecord) { r.Season = "spring" },
			wantField: "season",
		},
		{
			name:      "weekday out of range",
			mutate:    func(r *RawUsageRecord) { r.Weekday = "7" },
			wantField: "weekday",
		},
		{
			name:      "working day flag not boolean",
			mutate:    func(r *RawUsageRecord) { r.WorkingDay = "2" },
			wantField: "workingday",
		},
		{
			name:      "negative casual count",
			mutate:    func(r *RawUsageRecord) { r.Casual = "-1"; r.Total = "653" },
			wantField: "casual",
		},
		{
			name:      "total does not match parts",
			mutate:    func(r *RawUsageRecord) { r.Total = "986" },
			wantField: "cnt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			if tt.mutate != nil {
				tt.mutate(&raw)
			}

			rec, err := raw.ToRecord()

			if tt.wantField != "" {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
				assert.Equal(t, tt.wantField, verr.Field)
				assert.Equal(t, 2, verr.Line)
				return
			}

			require.NoError(t, err)
			if tt.checkValues != nil {
				tt.checkValues(t, rec)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	jan1 := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	jan3 := time.Date(2021, 1, 3, 0, 0, 0, 0, time.UTC)

	rng := NewDateRange(jan1.Add(15*time.Hour), jan3.Add(time.Hour))
	assert.True(t, rng.Start.Equal(jan1))
	assert.True(t, rng.End.Equal(jan3))
	assert.False(t, rng.IsEmpty())
	assert.True(t, rng.Contains(jan3.Add(23*time.Hour)))
	assert.False(t, rng.Contains(jan3.AddDate(0, 0, 1)))
	assert.Equal(t, "2021-01-01..2021-01-03", rng.Key())

	inverted := NewDateRange(jan3, jan1)
	assert.True(t, inverted.IsEmpty())
	assert.False(t, inverted.Contains(jan1))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Clear", WeatherLabel(1))
	assert.Equal(t, "Heavy Rain", WeatherLabel(4))
	assert.Equal(t, "Code 9", WeatherLabel(9))
	assert.Equal(t, "Winter", SeasonLabel(4))
	assert.Equal(t, "Sun", WeekdayLabel(0))
	assert.Equal(t, "Sat", WeekdayLabel(6))
	assert.Equal(t, "Code -1", WeekdayLabel(-1))
	assert.Equal(t, "Weekend and Holiday", WorkingDayLabel(0))
	assert.Equal(t, "Working Day", WorkingDayLabel(1))
}

// TestValidationError tests error handling
func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "dteday", Value: "x", Message: "invalid date format"}
	assert.Equal(t, `dteday: invalid date format (value "x")`, err.Error())
	assert.False(t, err.IsTransient())

	err.Line = 4
	assert.Equal(t, `line 4: dteday: invalid date format (value "x")`, err.Error())
}
