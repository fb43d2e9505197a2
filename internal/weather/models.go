package weather

import (
	"errors"
	"time"

	"github.com/i474232898/weather-pipeline/internal/common"
)

var (
	// ErrInvalidAPIKey is a permanent failure: the provider rejected the credential.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrCityNotFound is a permanent failure: the provider does not know the city.
	ErrCityNotFound = errors.New("city not found")
	// ErrInvalidPayload is a permanent failure: a 200 response could not be mapped.
	ErrInvalidPayload = errors.New("invalid weather payload")
	// ErrTransient marks failures that may succeed when retried.
	ErrTransient = errors.New("transient request failure")
	// ErrRetriesExhausted wraps the last transient failure once the retry limit is reached.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrNoReadings is returned when no city of a batch could be extracted.
	ErrNoReadings = errors.New("no weather data extracted")
)

const kelvinOffset = 273.15

// KelvinToCelsius converts a provider temperature to Celsius rounded to 2 decimals.
func KelvinToCelsius(k float64) float64 {
	return common.Round2(k - kelvinOffset)
}

// Reading is one normalized weather observation for one city at one capture time.
type Reading struct {
	City    string `json:"city"`
	Country string `json:"country"`

	// Timestamp is the local capture time, not the provider's observation time.
	Timestamp time.Time `json:"timestamp"`

	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`

	WeatherMain        string `json:"weather_main"`
	WeatherDescription string `json:"weather_description"`

	WindSpeed     float64 `json:"wind_speed"`
	WindDirection float64 `json:"wind_direction"`
	Cloudiness    float64 `json:"cloudiness"`
	Visibility    int     `json:"visibility"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CityFailure records why a city was dropped from a batch.
type CityFailure struct {
	City string
	Err  error
}

// ExtractionResult is the tabular output of one batch extraction.
type ExtractionResult struct {
	Readings []Reading
	Failures []CityFailure
}

// Succeeded is the number of cities that produced a reading.
func (r ExtractionResult) Succeeded() int {
	return len(r.Readings)
}

// Failed is the number of cities dropped from the batch.
func (r ExtractionResult) Failed() int {
	return len(r.Failures)
}

// Empty reports whether no city produced a reading.
func (r ExtractionResult) Empty() bool {
	return len(r.Readings) == 0
}
