package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the dataset and the API
const DateLayout = "2006-01-02"

// UsageRecord represents one calendar day of bike-sharing usage
type UsageRecord struct {
	Date             time.Time `json:"date" db:"record_date"`
	Season           int       `json:"season" db:"season"`
	WeatherCondition int       `json:"weather_condition" db:"weather_condition"`
	Weekday          int       `json:"weekday" db:"weekday"`
	IsWorkingDay     bool      `json:"is_working_day" db:"is_working_day"`
	CasualCount      int64     `json:"casual_count" db:"casual_count"`
	RegisteredCount  int64     `json:"registered_count" db:"registered_count"`
	TotalCount       int64     `json:"total_count" db:"total_count"`
}

// RawUsageRecord holds the untyped cells of a single dataset row
// Used during loading and ingestion
type RawUsageRecord struct {
	Line             int
	Date             string
	Season           string
	WeatherCondition string
	Weekday          string
	WorkingDay       string
	Casual           string
	Registered       string
	Total            string
}

// ToRecord converts RawUsageRecord to UsageRecord
// Rejects unparseable cells, negative counts and rows whose total
// is not the sum of casual and registered users
func (r *RawUsageRecord) ToRecord() (UsageRecord, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return UsageRecord{}, r.invalid("dteday", r.Date, "invalid date format, expected YYYY-MM-DD")
	}

	rec := UsageRecord{Date: date}

	codes := []struct {
		field string
		raw   string
		dst   *int
	}{
		{"season", r.Season, &rec.Season},
		{"weathersit", r.WeatherCondition, &rec.WeatherCondition},
		{"weekday", r.Weekday, &rec.Weekday},
	}
	for _, c := range codes {
		v, err := strconv.Atoi(strings.TrimSpace(c.raw))
		if err != nil {
			return UsageRecord{}, r.invalid(c.field, c.raw, "invalid category code, expected integer")
		}
		*c.dst = v
	}

	if rec.Weekday < 0 || rec.Weekday > 6 {
		return UsageRecord{}, r.invalid("weekday", r.Weekday, "weekday must be between 0 and 6")
	}

	switch strings.TrimSpace(r.WorkingDay) {
	case "0":
		rec.IsWorkingDay = false
	case "1":
		rec.IsWorkingDay = true
	default:
		return UsageRecord{}, r.invalid("workingday", r.WorkingDay, "working day flag must be 0 or 1")
	}

	counts := []struct {
		field string
		raw   string
		dst   *int64
	}{
		{"casual", r.Casual, &rec.CasualCount},
		{"registered", r.Registered, &rec.RegisteredCount},
		{"cnt", r.Total, &rec.TotalCount},
	}
	for _, c := range counts {
		v, err := strconv.ParseInt(strings.TrimSpace(c.raw), 10, 64)
		if err != nil {
			return UsageRecord{}, r.invalid(c.field, c.raw, "invalid count, expected integer")
		}
		if v < 0 {
			return UsageRecord{}, r.invalid(c.field, c.raw, "count must not be negative")
		}
		*c.dst = v
	}

	if rec.TotalCount != rec.CasualCount+rec.RegisteredCount {
		return UsageRecord{}, r.invalid("cnt", r.Total,
			fmt.Sprintf("total %d does not equal casual %d + registered %d",
				rec.TotalCount, rec.CasualCount, rec.RegisteredCount))
	}

	return rec, nil
}

func (r *RawUsageRecord) invalid(field, value, message string) *ValidationError {
	return &ValidationError{
		Line:    r.Line,
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// Day truncates t to UTC midnight of its calendar date
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive interval of calendar days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both bounds to calendar days
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: Day(start), End: Day(end)}
}

// IsEmpty reports whether the range contains no days
func (r DateRange) IsEmpty() bool {
	return r.Start.After(r.End)
}

// Contains reports whether t falls on a day inside the range
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Key returns a stable string form, used for caching
func (r DateRange) Key() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

func (r DateRange) String() string {
	return r.Key()
}

// ValidationError represents a data validation error
type ValidationError struct {
	Line    int
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s (value %q)", e.Line, e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("%s: %s (value %q)", e.Field, e.Message, e.Value)
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
