package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-pipeline/internal/pipeline"
)

func runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Extract every configured city once and load the readings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.validate(); err != nil {
				return err
			}

			report, err := a.pipeline().Run(cmd.Context())
			printReport(cmd.OutOrStdout(), report)
			return err
		},
	}
}

func printReport(w io.Writer, r pipeline.Report) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "EXTRACTION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Records extracted: %d\n", r.Extracted)
	fmt.Fprintf(w, "Cities failed: %d\n", r.ExtractFailed)

	if r.Summary.Records > 0 {
		fmt.Fprintf(w, "Cities: %s\n", strings.Join(r.Summary.Cities, ", "))
		fmt.Fprintf(w, "Avg temperature: %.2f°C\n", r.Summary.AverageTemperature)
		fmt.Fprintf(w, "Min temperature: %.2f°C (%s)\n", r.Summary.Coldest.Temperature, r.Summary.Coldest.City)
		fmt.Fprintf(w, "Max temperature: %.2f°C (%s)\n", r.Summary.Hottest.Temperature, r.Summary.Hottest.City)
	}

	for _, f := range r.Failures {
		fmt.Fprintf(w, "  failed: %s: %v\n", f.City, f.Err)
	}

	if r.SnapshotPath != "" {
		fmt.Fprintf(w, "Snapshot: %s\n", r.SnapshotPath)
	}
	fmt.Fprintf(w, "Loaded: %d, failed: %d\n", r.Loaded, r.LoadFailed)
	fmt.Fprintln(w, rule)
}
