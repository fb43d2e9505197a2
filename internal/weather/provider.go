package weather

import (
	"context"
)

// Fetcher abstracts a weather data source keyed by city name.
//
// Implementations return an error wrapping ErrInvalidAPIKey or ErrCityNotFound
// for permanent failures and ErrRetriesExhausted once transient failures
// outlast their retry policy.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, city string) (Reading, error)
}

// Recorder receives extraction events. A nil Recorder is allowed.
type Recorder interface {
	CityExtracted(provider string)
	CityFailed(provider string, err error)
}
