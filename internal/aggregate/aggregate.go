// Package aggregate turns a view of usage records into the dashboard's
// derived tables. Every function here is pure: inputs are never modified
// and every result is freshly allocated.
package aggregate

import (
	"sort"
	"time"

	"bikeshare-dashboard/internal/models"
)

// MonthLabelLayout formats month buckets as "Jan-2021"
const MonthLabelLayout = "Jan-2006"

// CategoryTotal is one group of a single-metric aggregate
type CategoryTotal struct {
	Code  int    `json:"code"`
	Label string `json:"label"`
	Total int64  `json:"total"`
}

// UserTypeTotal is one group of an aggregate split by user type
type UserTypeTotal struct {
	Code       int    `json:"code"`
	Label      string `json:"label"`
	Total      int64  `json:"total"`
	Casual     int64  `json:"casual"`
	Registered int64  `json:"registered"`
}

// MonthlyTotal is one calendar month bucket
type MonthlyTotal struct {
	Month time.Time `json:"month"`
	Label string    `json:"label"`
	Total int64     `json:"total"`
}

// Summary holds the headline metrics of a view
type Summary struct {
	Days       int   `json:"days"`
	Casual     int64 `json:"casual"`
	Registered int64 `json:"registered"`
	Total      int64 `json:"total"`
}

// Dashboard is the full result of one recomputation
type Dashboard struct {
	Range      models.DateRange `json:"range"`
	Summary    Summary          `json:"summary"`
	Weather    []CategoryTotal  `json:"weather"`
	Monthly    []MonthlyTotal   `json:"monthly"`
	Weekday    []UserTypeTotal  `json:"weekday"`
	WorkingDay []UserTypeTotal  `json:"working_day"`
	Season     []CategoryTotal  `json:"season"`
}

// Filter returns the records whose date lies in [start, end], in input order.
// An inverted interval yields an empty view.
func Filter(records []models.UsageRecord, start, end time.Time) []models.UsageRecord {
	rng := models.NewDateRange(start, end)
	out := make([]models.UsageRecord, 0)
	if rng.IsEmpty() {
		return out
	}
	for _, r := range records {
		if rng.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterRange is Filter over a DateRange
func FilterRange(records []models.UsageRecord, rng models.DateRange) []models.UsageRecord {
	return Filter(records, rng.Start, rng.End)
}

// ByWeather sums total_count per weather condition
func ByWeather(records []models.UsageRecord) []CategoryTotal {
	return sumByCode(records, func(r models.UsageRecord) int { return r.WeatherCondition }, models.WeatherLabel)
}

// BySeason sums total_count per season
func BySeason(records []models.UsageRecord) []CategoryTotal {
	return sumByCode(records, func(r models.UsageRecord) int { return r.Season }, models.SeasonLabel)
}

// ByWeekday sums total, casual and registered counts per weekday
func ByWeekday(records []models.UsageRecord) []UserTypeTotal {
	return sumUserTypes(records, func(r models.UsageRecord) int { return r.Weekday }, models.WeekdayLabel)
}

// ByWorkingDay sums total, casual and registered counts per working-day flag
func ByWorkingDay(records []models.UsageRecord) []UserTypeTotal {
	return sumUserTypes(records, func(r models.UsageRecord) int {
		if r.IsWorkingDay {
			return 1
		}
		return 0
	}, models.WorkingDayLabel)
}

// ByMonth sums total_count per calendar month, ascending.
// Months between the first and last bucket without records are kept with a
// zero total so the series stays continuous in time.
func ByMonth(records []models.UsageRecord) []MonthlyTotal {
	out := make([]MonthlyTotal, 0)
	if len(records) == 0 {
		return out
	}

	sums := make(map[time.Time]int64)
	first, last := monthStart(records[0].Date), monthStart(records[0].Date)
	for _, r := range records {
		m := monthStart(r.Date)
		sums[m] += r.TotalCount
		if m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
	}

	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthlyTotal{
			Month: m,
			Label: m.Format(MonthLabelLayout),
			Total: sums[m],
		})
	}
	return out
}

// Summarize computes the headline metrics of a view
func Summarize(records []models.UsageRecord) Summary {
	var s Summary
	for _, r := range records {
		s.Days++
		s.Casual += r.CasualCount
		s.Registered += r.RegisteredCount
		s.Total += r.TotalCount
	}
	return s
}

// Recompute runs every aggregation over an already filtered view
func Recompute(rng models.DateRange, view []models.UsageRecord) Dashboard {
	return Dashboard{
		Range:      rng,
		Summary:    Summarize(view),
		Weather:    ByWeather(view),
		Monthly:    ByMonth(view),
		Weekday:    ByWeekday(view),
		WorkingDay: ByWorkingDay(view),
		Season:     BySeason(view),
	}
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func sumByCode(records []models.UsageRecord, key func(models.UsageRecord) int, label func(int) string) []CategoryTotal {
	sums := make(map[int]int64)
	for _, r := range records {
		sums[key(r)] += r.TotalCount
	}

	out := make([]CategoryTotal, 0, len(sums))
	for code, total := range sums {
		out = append(out, CategoryTotal{Code: code, Label: label(code), Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func sumUserTypes(records []models.UsageRecord, key func(models.UsageRecord) int, label func(int) string) []UserTypeTotal {
	groups := make(map[int]*UserTypeTotal)
	for _, r := range records {
		code := key(r)
		g, ok := groups[code]
		if !ok {
			g = &UserTypeTotal{Code: code, Label: label(code)}
			groups[code] = g
		}
		g.Total += r.TotalCount
		g.Casual += r.CasualCount
		g.Registered += r.RegisteredCount
	}

	out := make([]UserTypeTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Totals maps each category code to its total, convenient for lookups
func Totals(groups []CategoryTotal) map[int]int64 {
	m := make(map[int]int64, len(groups))
	for _, g := range groups {
		m[g.Code] = g.Total
	}
	return m
}
