package aggregate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikeshare-dashboard/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(date time.Time, total int64) models.UsageRecord {
	return models.UsageRecord{
		Date:             date,
		Season:           1,
		WeatherCondition: 1,
		Weekday:          int(date.Weekday()),
		IsWorkingDay:     date.Weekday() != time.Saturday && date.Weekday() != time.Sunday,
		CasualCount:      total / 4,
		RegisteredCount:  total - total/4,
		TotalCount:       total,
	}
}

func threeDays() []models.UsageRecord {
	return []models.UsageRecord{
		rec(day(2021, 1, 1), 10),
		rec(day(2021, 1, 2), 20),
		rec(day(2021, 1, 3), 30),
	}
}

// randomRecords builds a deterministic daily dataset spanning several years
func randomRecords(n int) []models.UsageRecord {
	rnd := rand.New(rand.NewSource(42))
	start := day(2011, 1, 1)
	out := make([]models.UsageRecord, 0, n)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		casual := int64(rnd.Intn(3000))
		registered := int64(rnd.Intn(7000))
		out = append(out, models.UsageRecord{
			Date:             d,
			Season:           1 + rnd.Intn(4),
			WeatherCondition: 1 + rnd.Intn(4),
			Weekday:          int(d.Weekday()),
			IsWorkingDay:     rnd.Intn(3) > 0,
			CasualCount:      casual,
			RegisteredCount:  registered,
			TotalCount:       casual + registered,
		})
	}
	return out
}

func sumTotals(records []models.UsageRecord) int64 {
	var s int64
	for _, r := range records {
		s += r.TotalCount
	}
	return s
}

func TestByWeather_Example(t *testing.T) {
	got := ByWeather(threeDays())
	assert.Equal(t, map[int]int64{1: 60}, Totals(got))
	require.Len(t, got, 1)
	assert.Equal(t, "Clear", got[0].Label)
}

func TestByWeather_OmitsAbsentCategories(t *testing.T) {
	records := threeDays()
	records[1].WeatherCondition = 3

	got := ByWeather(records)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Code)
	assert.Equal(t, int64(40), got[0].Total)
	assert.Equal(t, 3, got[1].Code)
	assert.Equal(t, int64(20), got[1].Total)
}

func TestByMonth_Example(t *testing.T) {
	records := []models.UsageRecord{
		rec(day(2021, 1, 5), 40),
		rec(day(2021, 1, 31), 60),
		rec(day(2021, 2, 1), 20),
		rec(day(2021, 2, 28), 30),
	}

	got := ByMonth(records)
	require.Len(t, got, 2)
	assert.Equal(t, "Jan-2021", got[0].Label)
	assert.Equal(t, int64(100), got[0].Total)
	assert.Equal(t, "Feb-2021", got[1].Label)
	assert.Equal(t, int64(50), got[1].Total)
}

func TestByMonth_FillsGapMonthsAndSortsUnorderedInput(t *testing.T) {
	records := []models.UsageRecord{
		rec(day(2021, 4, 10), 7),
		rec(day(2020, 12, 31), 5),
	}

	got := ByMonth(records)
	labels := make([]string, 0, len(got))
	for _, m := range got {
		labels = append(labels, m.Label)
	}
	assert.Equal(t, []string{"Dec-2020", "Jan-2021", "Feb-2021", "Mar-2021", "Apr-2021"}, labels)
	assert.Equal(t, int64(5), got[0].Total)
	assert.Equal(t, int64(0), got[1].Total)
	assert.Equal(t, int64(7), got[4].Total)
}

func TestByMonth_OrderedAndConserving(t *testing.T) {
	records := randomRecords(731)
	got := ByMonth(records)

	require.Len(t, got, 24)
	var total int64
	for i, m := range got {
		total += m.Total
		assert.Equal(t, 1, m.Month.Day())
		if i > 0 {
			assert.True(t, got[i-1].Month.Before(m.Month), "months out of order at %d", i)
		}
	}
	assert.Equal(t, sumTotals(records), total)
}

func TestBySeason_ConservesMass(t *testing.T) {
	for _, n := range []int{1, 17, 365, 731} {
		records := randomRecords(n)
		var total int64
		for _, g := range BySeason(records) {
			total += g.Total
		}
		assert.Equal(t, sumTotals(records), total, "n=%d", n)
	}
}

func TestByWeekdayAndWorkingDay_SumEachMetric(t *testing.T) {
	records := randomRecords(400)
	summary := Summarize(records)

	for name, groups := range map[string][]UserTypeTotal{
		"weekday":    ByWeekday(records),
		"workingday": ByWorkingDay(records),
	} {
		var total, casual, registered int64
		for _, g := range groups {
			total += g.Total
			casual += g.Casual
			registered += g.Registered
			assert.Equal(t, g.Total, g.Casual+g.Registered, name)
		}
		assert.Equal(t, summary.Total, total, name)
		assert.Equal(t, summary.Casual, casual, name)
		assert.Equal(t, summary.Registered, registered, name)
	}

	weekday := ByWeekday(records)
	require.Len(t, weekday, 7)
	assert.Equal(t, "Sun", weekday[0].Label)
	assert.Equal(t, "Sat", weekday[6].Label)

	working := ByWorkingDay(records)
	require.Len(t, working, 2)
	assert.Equal(t, "Weekend and Holiday", working[0].Label)
	assert.Equal(t, "Working Day", working[1].Label)
}

func TestFilter_Example(t *testing.T) {
	view := Filter(threeDays(), day(2021, 1, 2), day(2021, 1, 3))
	require.Len(t, view, 2)
	assert.Equal(t, int64(50), sumTotals(view))
	assert.True(t, view[0].Date.Equal(day(2021, 1, 2)))
	assert.True(t, view[1].Date.Equal(day(2021, 1, 3)))
}

func TestFilter_InvertedRangeIsEmpty(t *testing.T) {
	for _, records := range [][]models.UsageRecord{nil, threeDays(), randomRecords(100)} {
		view := Filter(records, day(2021, 1, 3), day(2021, 1, 1))
		assert.NotNil(t, view)
		assert.Empty(t, view)
	}
}

func TestFilter_Idempotent(t *testing.T) {
	records := randomRecords(500)
	start, end := day(2011, 3, 15), day(2012, 2, 29)

	once := Filter(records, start, end)
	twice := Filter(once, start, end)
	assert.Equal(t, once, twice)
	assert.NotEmpty(t, once)
}

func TestFilter_PreservesOrderAndIgnoresTimeOfDay(t *testing.T) {
	records := []models.UsageRecord{
		rec(day(2021, 1, 3), 30),
		rec(day(2021, 1, 1), 10),
		rec(day(2021, 1, 2), 20),
	}
	view := Filter(records, day(2021, 1, 1).Add(18*time.Hour), day(2021, 1, 2).Add(time.Hour))
	require.Len(t, view, 2)
	assert.Equal(t, int64(10), view[0].TotalCount)
	assert.Equal(t, int64(20), view[1].TotalCount)
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	records := threeDays()
	view := Filter(records, day(2021, 1, 1), day(2021, 1, 3))
	view[0].TotalCount = 999
	assert.Equal(t, int64(10), records[0].TotalCount)
}

func TestRecompute_OutsideRangeIsEmpty(t *testing.T) {
	rng := models.NewDateRange(day(2030, 1, 1), day(2030, 12, 31))
	d := Recompute(rng, FilterRange(threeDays(), rng))

	assert.Equal(t, Summary{}, d.Summary)
	assert.Empty(t, d.Weather)
	assert.Empty(t, d.Monthly)
	assert.Empty(t, d.Weekday)
	assert.Empty(t, d.WorkingDay)
	assert.Empty(t, d.Season)
	assert.NotNil(t, d.Weather)
	assert.NotNil(t, d.Monthly)
}

func TestRecompute_FullView(t *testing.T) {
	records := threeDays()
	rng := models.NewDateRange(day(2021, 1, 1), day(2021, 1, 3))
	d := Recompute(rng, FilterRange(records, rng))

	assert.Equal(t, rng, d.Range)
	assert.Equal(t, 3, d.Summary.Days)
	assert.Equal(t, int64(60), d.Summary.Total)
	assert.Equal(t, d.Summary.Total, d.Summary.Casual+d.Summary.Registered)
	require.Len(t, d.Monthly, 1)
	assert.Equal(t, "Jan-2021", d.Monthly[0].Label)
	assert.Equal(t, map[int]int64{1: 60}, Totals(d.Season))
}
