package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bikeshare-dashboard/internal/services"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard to an XLSX workbook",
	Long:  `Writes a workbook with a summary sheet and one charted sheet per aggregate.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "bikeshare.xlsx", "workbook path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	d, logger, err := loadDashboard(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("creating %s: %w", exportOutput, err)
	}

	if err := services.NewExportService(logger).WriteTo(ctx, f, d); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", exportOutput, err)
	}

	info, err := os.Stat(exportOutput)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %s days)\n", exportOutput,
		humanize.Bytes(uint64(info.Size())), humanize.Comma(int64(d.Summary.Days)))
	return nil
}
