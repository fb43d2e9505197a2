package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// DisplayHeader is the header of the dashboard CSV download.
var DisplayHeader = []string{
	"City", "Temp (°C)", "Feels Like (°C)", "Humidity (%)",
	"Pressure (hPa)", "Weather", "Wind Speed (m/s)", "Timestamp",
}

// DisplayRow is one display-formatted dashboard table row.
type DisplayRow struct {
	City        string
	Temperature float64
	FeelsLike   float64
	Humidity    float64
	Pressure    float64
	Weather     string
	WindSpeed   float64
	Timestamp   time.Time
}

// WriteDisplayCSV writes rows under DisplayHeader.
func WriteDisplayCSV(w io.Writer, rows []DisplayRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DisplayHeader); err != nil {
		return err
	}

	for _, r := range rows {
		if err := cw.Write([]string{
			r.City,
			strconv.FormatFloat(r.Temperature, 'f', 1, 64),
			strconv.FormatFloat(r.FeelsLike, 'f', 1, 64),
			strconv.FormatFloat(r.Humidity, 'f', 0, 64),
			strconv.FormatFloat(r.Pressure, 'f', 0, 64),
			r.Weather,
			strconv.FormatFloat(r.WindSpeed, 'f', 1, 64),
			r.Timestamp.Format(timestampLayout),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
