package httpapi

import (
	"math"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-pipeline/internal/common"
	"github.com/i474232898/weather-pipeline/internal/export"
	"github.com/i474232898/weather-pipeline/internal/store"
)

// CityTemperature names a city and one of its temperatures.
type CityTemperature struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
}

// ConditionCount is the number of readings with one weather category.
type ConditionCount struct {
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// Summary is the dashboard metrics row.
type Summary struct {
	TotalCities        int              `json:"total_cities"`
	Records            int              `json:"records"`
	AverageTemperature float64          `json:"average_temperature"`
	Hottest            *CityTemperature `json:"hottest,omitempty"`
	Coldest            *CityTemperature `json:"coldest,omitempty"`
	Conditions         []ConditionCount `json:"conditions"`
}

// CityStats backs the map and comparison views for one city.
type CityStats struct {
	Latest             store.HistoryRow `json:"latest"`
	Readings           int              `json:"readings"`
	AverageTemperature float64          `json:"average_temperature"`
	AverageHumidity    float64          `json:"average_humidity"`
	AverageWindSpeed   float64          `json:"average_wind_speed"`
	MinTemperature     float64          `json:"min_temperature"`
	MaxTemperature     float64          `json:"max_temperature"`
}

// filterCities keeps rows whose city is selected; no selection keeps all.
func filterCities(rows []store.HistoryRow, cities []string) []store.HistoryRow {
	if len(cities) == 0 {
		return rows
	}

	out := make([]store.HistoryRow, 0, len(rows))
	for _, r := range rows {
		if common.HasAny(r.CityName, cities...) {
			out = append(out, r)
		}
	}
	return out
}

func summarize(rows []store.HistoryRow) Summary {
	s := Summary{Records: len(rows), Conditions: []ConditionCount{}}
	if len(rows) == 0 {
		return s
	}

	cities := make(map[string]struct{})
	conditions := make(map[string]int)
	hottest, coldest := rows[0], rows[0]
	var sum float64

	for _, r := range rows {
		cities[r.CityName] = struct{}{}
		conditions[r.WeatherMain]++
		sum += r.Temperature

		if r.Temperature > hottest.Temperature {
			hottest = r
		}
		if r.Temperature < coldest.Temperature {
			coldest = r
		}
	}

	s.TotalCities = len(cities)
	s.AverageTemperature = common.Round2(sum / float64(len(rows)))
	s.Hottest = &CityTemperature{City: hottest.CityName, Temperature: hottest.Temperature}
	s.Coldest = &CityTemperature{City: coldest.CityName, Temperature: coldest.Temperature}

	for c, n := range conditions {
		s.Conditions = append(s.Conditions, ConditionCount{Condition: c, Count: n})
	}
	sort.Slice(s.Conditions, func(i, j int) bool {
		if s.Conditions[i].Count != s.Conditions[j].Count {
			return s.Conditions[i].Count > s.Conditions[j].Count
		}
		return s.Conditions[i].Condition < s.Conditions[j].Condition
	})

	return s
}

// cityStats groups rows by city. Rows are newest first, so the first row
// seen for a city is its latest reading.
func cityStats(rows []store.HistoryRow) []CityStats {
	byCity := make(map[string]*CityStats)
	var order []string

	for _, r := range rows {
		st, ok := byCity[r.CityName]
		if !ok {
			st = &CityStats{
				Latest:         r,
				MinTemperature: math.Inf(1),
				MaxTemperature: math.Inf(-1),
			}
			byCity[r.CityName] = st
			order = append(order, r.CityName)
		}

		st.Readings++
		st.AverageTemperature += r.Temperature
		st.AverageHumidity += r.Humidity
		st.AverageWindSpeed += r.WindSpeed
		st.MinTemperature = math.Min(st.MinTemperature, r.TempMin)
		st.MaxTemperature = math.Max(st.MaxTemperature, r.TempMax)
	}

	sort.Strings(order)

	out := make([]CityStats, 0, len(order))
	for _, name := range order {
		st := byCity[name]
		n := float64(st.Readings)
		st.AverageTemperature = common.Round2(st.AverageTemperature / n)
		st.AverageHumidity = common.Round2(st.AverageHumidity / n)
		st.AverageWindSpeed = common.Round2(st.AverageWindSpeed / n)
		out = append(out, *st)
	}
	return out
}

func displayRows(rows []store.HistoryRow) []export.DisplayRow {
	title := cases.Title(language.English)

	out := make([]export.DisplayRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, export.DisplayRow{
			City:        r.CityName,
			Temperature: r.Temperature,
			FeelsLike:   r.FeelsLike,
			Humidity:    r.Humidity,
			Pressure:    r.Pressure,
			Weather:     title.String(r.WeatherDescription),
			WindSpeed:   r.WindSpeed,
			Timestamp:   r.Timestamp,
		})
	}
	return out
}
