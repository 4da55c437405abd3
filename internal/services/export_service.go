package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/charts"
	"bikeshare-dashboard/internal/models"
	"bikeshare-dashboard/pkg/logging"
)

// SummarySheet is the first sheet of every exported workbook
const SummarySheet = "Summary"

// sheet names per chart, kept under the 31 character limit
var chartSheets = map[string]string{
	charts.Monthly:    "Monthly",
	charts.Weather:    "Weather",
	charts.Weekday:    "Weekday",
	charts.WorkingDay: "Working Day",
	charts.Season:     "Season",
}

// ExportService renders a dashboard into an XLSX workbook
type ExportService struct {
	logger *logging.StructuredLogger
}

// NewExportService creates a new export service
func NewExportService(logger *logging.StructuredLogger) *ExportService {
	return &ExportService{logger: logger}
}

// Workbook builds a workbook with a summary sheet and one sheet per chart.
// The caller owns the returned file and must Close it.
func (s *ExportService) Workbook(d aggregate.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	if err := writeSummary(f, d); err != nil {
		f.Close()
		return nil, err
	}

	for _, c := range charts.Build(d) {
		if err := writeChartSheet(f, chartSheets[c.ID], c); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write %s sheet: %w", c.ID, err)
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteTo writes the workbook for d to w
func (s *ExportService) WriteTo(ctx context.Context, w io.Writer, d aggregate.Dashboard) error {
	f, err := s.Workbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := f.WriteTo(w)
	if err != nil {
		s.logger.Error(ctx, "[EXPORT_WRITE_ERROR] Failed to write workbook", logging.Fields{
			"range": d.Range.Key(),
		}, err)
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info(ctx, "[EXPORT_COMPLETE] Workbook exported", logging.Fields{
		"range": d.Range.Key(),
		"bytes": n,
	})
	return nil
}

func writeSummary(f *excelize.File, d aggregate.Dashboard) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Start Date", formatDay(d.Range.Start)},
		{"End Date", formatDay(d.Range.End)},
		{"Days", d.Summary.Days},
		{"Total Casual Users", d.Summary.Casual},
		{"Total Registered Users", d.Summary.Registered},
		{"Total Rentals", d.Summary.Total},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 26)
}

func writeChartSheet(f *excelize.File, sheet string, c charts.Chart) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{c.XLabel}
	for _, series := range c.Series {
		header = append(header, series.Name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	points := 0
	if len(c.Series) > 0 {
		points = len(c.Series[0].Points)
	}
	for i := 0; i < points; i++ {
		row := []interface{}{c.Series[0].Points[i].Label}
		for _, series := range c.Series {
			row = append(row, series.Points[i].Value)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return err
	}

	// excelize rejects charts without data points
	if points == 0 {
		return nil
	}

	chartType := excelize.Col
	if c.Kind == charts.KindLine {
		chartType = excelize.Line
	}

	series := make([]excelize.ChartSeries, 0, len(c.Series))
	for i := range c.Series {
		col, err := excelize.ColumnNumberToName(i + 2)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$%s$1", sheet, col),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, points+1),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", sheet, col, col, points+1),
		})
	}

	anchor, err := excelize.CoordinatesToCellName(len(c.Series)+3, 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheet, anchor, &excelize.Chart{
		Type:   chartType,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: c.Title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
	})
}

func formatDay(t time.Time) string {
	return t.Format(models.DateLayout)
}
