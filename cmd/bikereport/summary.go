package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bikeshare-dashboard/internal/aggregate"
	"bikeshare-dashboard/internal/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard aggregates",
	Long: `Prints the headline metrics and every aggregate (weather, month, weekday,
working day, season) for the selected date range as text tables.`,
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, _, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	writeReport(cmd.OutOrStdout(), d)
	return nil
}

const rule = "----------------------------------------------------"

// writeReport renders d as plain text tables
func writeReport(w io.Writer, d aggregate.Dashboard) {
	fmt.Fprintf(w, "Bike Sharing Usage %s to %s\n", d.Range.Start.Format(models.DateLayout), d.Range.End.Format(models.DateLayout))
	fmt.Fprintln(w, strings.Repeat("=", len(rule)))
	fmt.Fprintf(w, "Days:                   %s\n", humanize.Comma(int64(d.Summary.Days)))
	fmt.Fprintf(w, "Total Casual Users:     %s\n", humanize.Comma(d.Summary.Casual))
	fmt.Fprintf(w, "Total Registered Users: %s\n", humanize.Comma(d.Summary.Registered))
	fmt.Fprintf(w, "Total Rentals:          %s\n", humanize.Comma(d.Summary.Total))

	if d.Summary.Days == 0 {
		fmt.Fprintln(w, "\nNo records in range")
		return
	}

	fmt.Fprintln(w, "\nMonthly Rentals")
	fmt.Fprintln(w, rule)
	for _, m := range d.Monthly {
		fmt.Fprintf(w, "%-22s %14s\n", m.Label, humanize.Comma(m.Total))
	}

	writeCategories(w, "Rentals by Weather Condition", d.Weather)
	writeUserTypes(w, "Users by Day of Week", d.Weekday)
	writeUserTypes(w, "Weekend and Holiday vs Working Day", d.WorkingDay)
	writeCategories(w, "Rentals by Season", d.Season)
}

func writeCategories(w io.Writer, title string, groups []aggregate.CategoryTotal) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, rule)
	for _, g := range groups {
		fmt.Fprintf(w, "%-22s %14s\n", g.Label, humanize.Comma(g.Total))
	}
}

func writeUserTypes(w io.Writer, title string, groups []aggregate.UserTypeTotal) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, rule)
	fmt.Fprintf(w, "%-22s %14s %14s\n", "", "Casual", "Registered")
	for _, g := range groups {
		fmt.Fprintf(w, "%-22s %14s %14s\n", g.Label, humanize.Comma(g.Casual), humanize.Comma(g.Registered))
	}
}
