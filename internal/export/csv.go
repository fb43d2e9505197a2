// Package export writes CSV artifacts: the per-run snapshot and the dashboard download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

const timestampLayout = "2006-01-02 15:04:05"

var snapshotHeader = []string{
	"city", "country", "timestamp", "temperature", "feels_like", "temp_min", "temp_max",
	"humidity", "pressure", "weather_main", "weather_description", "wind_speed",
	"wind_direction", "cloudiness", "visibility", "latitude", "longitude",
}

// SnapshotFileName is the dated file name of a run snapshot taken at t.
func SnapshotFileName(t time.Time) string {
	return "weather_" + t.Format("20060102_150405") + ".csv"
}

// WriteSnapshot writes readings to dir/weather_YYYYMMDD_HHMMSS.csv and returns the path.
func WriteSnapshot(dir string, readings []weather.Reading, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dir, SnapshotFileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	if err := writeSnapshot(f, readings); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close snapshot: %w", err)
	}

	return path, nil
}

func writeSnapshot(w io.Writer, readings []weather.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return err
	}

	for _, r := range readings {
		record := []string{
			r.City,
			r.Country,
			r.Timestamp.Format(timestampLayout),
			formatFloat(r.Temperature),
			formatFloat(r.FeelsLike),
			formatFloat(r.TempMin),
			formatFloat(r.TempMax),
			formatFloat(r.Humidity),
			formatFloat(r.Pressure),
			r.WeatherMain,
			r.WeatherDescription,
			formatFloat(r.WindSpeed),
			formatFloat(r.WindDirection),
			formatFloat(r.Cloudiness),
			strconv.Itoa(r.Visibility),
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
