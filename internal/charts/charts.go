// Package charts converts dashboard aggregates into labelled series, the
// hand-off format for any renderer (HTML page, spreadsheet, terminal).
package charts

import (
	"bikeshare-dashboard/internal/aggregate"
)

// Kind tells a renderer how to draw a chart
type Kind string

const (
	KindLine       Kind = "line"
	KindBar        Kind = "bar"
	KindGroupedBar Kind = "grouped_bar"
)

// Chart identifiers
const (
	Monthly    = "monthly"
	Weather    = "weather"
	Weekday    = "weekday"
	WorkingDay = "workingday"
	Season     = "season"
)

// IDs lists the charts in display order
var IDs = []string{Monthly, Weather, Weekday, WorkingDay, Season}

// Point is one (label, value) pair
type Point struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// Series is one named run of points
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Chart is a renderer-agnostic chart description
type Chart struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Kind   Kind     `json:"kind"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
}

// Build returns every chart for d in display order
func Build(d aggregate.Dashboard) []Chart {
	out := make([]Chart, 0, len(IDs))
	for _, id := range IDs {
		c, _ := ByID(d, id)
		out = append(out, c)
	}
	return out
}

// ByID returns a single chart; ok is false for unknown ids
func ByID(d aggregate.Dashboard, id string) (Chart, bool) {
	switch id {
	case Monthly:
		return monthlyChart(d.Monthly), true
	case Weather:
		return Chart{
			ID:     Weather,
			Title:  "Rentals by Weather Condition",
			Kind:   KindBar,
			XLabel: "Weather Condition",
			YLabel: "Total Rentals",
			Series: []Series{{Name: "Total", Points: categoryPoints(d.Weather)}},
		}, true
	case Weekday:
		return userTypeChart(Weekday, "Users by Day of Week", "Day of Week", d.Weekday), true
	case WorkingDay:
		return userTypeChart(WorkingDay, "Weekend and Holiday vs Working Day Users", "Day Type", d.WorkingDay), true
	case Season:
		return Chart{
			ID:     Season,
			Title:  "Rentals by Season",
			Kind:   KindBar,
			XLabel: "Season",
			YLabel: "Total Rentals",
			Series: []Series{{Name: "Total", Points: categoryPoints(d.Season)}},
		}, true
	}
	return Chart{}, false
}

func monthlyChart(months []aggregate.MonthlyTotal) Chart {
	points := make([]Point, 0, len(months))
	for _, m := range months {
		points = append(points, Point{Label: m.Label, Value: m.Total})
	}
	return Chart{
		ID:     Monthly,
		Title:  "Monthly Rental Trend",
		Kind:   KindLine,
		XLabel: "Month-Year",
		YLabel: "Total Rentals",
		Series: []Series{{Name: "Total", Points: points}},
	}
}

func categoryPoints(groups []aggregate.CategoryTotal) []Point {
	points := make([]Point, 0, len(groups))
	for _, g := range groups {
		points = append(points, Point{Label: g.Label, Value: g.Total})
	}
	return points
}

func userTypeChart(id, title, xLabel string, groups []aggregate.UserTypeTotal) Chart {
	casual := make([]Point, 0, len(groups))
	registered := make([]Point, 0, len(groups))
	for _, g := range groups {
		casual = append(casual, Point{Label: g.Label, Value: g.Casual})
		registered = append(registered, Point{Label: g.Label, Value: g.Registered})
	}
	return Chart{
		ID:     id,
		Title:  title,
		Kind:   KindGroupedBar,
		XLabel: xLabel,
		YLabel: "Total Users",
		Series: []Series{
			{Name: "Casual", Points: casual},
			{Name: "Registered", Points: registered},
		},
	}
}
