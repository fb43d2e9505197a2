package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

func TestWriteSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := WriteSnapshot(dir, []weather.Reading{
		{City: "Boston", Country: "US", Timestamp: now, Temperature: 14.55, Humidity: 72, Visibility: 10000, WeatherDescription: "broken clouds, windy"},
		{City: "Miami", Country: "US", Timestamp: now, Temperature: 28.1},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "weather_20250304_050607.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, snapshotHeader, records[0])
	assert.Equal(t, "Boston", records[1][0])
	assert.Equal(t, "2025-03-04 05:06:07", records[1][2])
	assert.Equal(t, "14.55", records[1][3])
	assert.Equal(t, "broken clouds, windy", records[1][10])
	assert.Equal(t, "10000", records[1][14])
	assert.Equal(t, "Miami", records[2][0])
}

func TestWriteDisplayCSV(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	err := WriteDisplayCSV(&buf, []DisplayRow{
		{City: "Boston", Temperature: 14.55, FeelsLike: 13.88, Humidity: 72, Pressure: 1014, Weather: "Broken Clouds", WindSpeed: 4.12, Timestamp: ts},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, DisplayHeader, records[0])
	assert.Equal(t, []string{"Boston", "14.6", "13.9", "72", "1014", "Broken Clouds", "4.1", "2025-03-04 05:06:07"}, records[1])
}

func TestWriteDisplayCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDisplayCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
