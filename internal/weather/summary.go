package weather

import "math"

// Extreme names the city holding a temperature extreme.
type Extreme struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
}

// RunSummary is the console summary printed after an extraction.
type RunSummary struct {
	Records            int      `json:"records"`
	Cities             []string `json:"cities"`
	AverageTemperature float64  `json:"average_temperature"`
	Coldest            Extreme  `json:"coldest"`
	Hottest            Extreme  `json:"hottest"`
}

// Summarize computes record count, cities in extraction order and the
// average, minimum and maximum temperature. The first city wins ties.
func Summarize(readings []Reading) RunSummary {
	if len(readings) == 0 {
		return RunSummary{Cities: []string{}}
	}

	summary := RunSummary{
		Records: len(readings),
		Cities:  make([]string, 0, len(readings)),
		Coldest: Extreme{Temperature: math.Inf(1)},
		Hottest: Extreme{Temperature: math.Inf(-1)},
	}

	var sum float64
	for _, r := range readings {
		summary.Cities = append(summary.Cities, r.City)
		sum += r.Temperature

		if r.Temperature < summary.Coldest.Temperature {
			summary.Coldest = Extreme{City: r.City, Temperature: r.Temperature}
		}
		if r.Temperature > summary.Hottest.Temperature {
			summary.Hottest = Extreme{City: r.City, Temperature: r.Temperature}
		}
	}

	summary.AverageTemperature = sum / float64(len(readings))
	return summary
}
