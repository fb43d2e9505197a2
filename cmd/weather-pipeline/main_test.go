package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/weather-pipeline/internal/pipeline"
	"github.com/i474232898/weather-pipeline/internal/weather"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := rootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"run", "schedule", "dashboard"}, names)
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, pipeline.Report{
		Extracted:     2,
		ExtractFailed: 1,
		Loaded:        2,
		SnapshotPath:  "data/weather_20250601_120000.csv",
		Summary: weather.RunSummary{
			Records:            2,
			Cities:             []string{"Boston", "Miami"},
			AverageTemperature: 18,
			Coldest:            weather.Extreme{City: "Boston", Temperature: 6},
			Hottest:            weather.Extreme{City: "Miami", Temperature: 30},
		},
		Failures: []weather.CityFailure{{City: "InvalidCity123", Err: errors.New("city not found")}},
	})

	out := buf.String()
	assert.Contains(t, out, "Records extracted: 2")
	assert.Contains(t, out, "Cities: Boston, Miami")
	assert.Contains(t, out, "Min temperature: 6.00°C (Boston)")
	assert.Contains(t, out, "Max temperature: 30.00°C (Miami)")
	assert.Contains(t, out, "failed: InvalidCity123: city not found")
	assert.Contains(t, out, "Loaded: 2, failed: 0")
}

func TestPrintReportWithoutReadings(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, pipeline.Report{ExtractFailed: 3})

	assert.NotContains(t, buf.String(), "Avg temperature")
	assert.Contains(t, buf.String(), "Cities failed: 3")
}
