package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

const (
	DefaultOpenWeatherURL = "http://api.openweathermap.org/data/2.5/weather"
	userAgent             = "weather-pipeline"
	unknownCountry        = "Unknown"
)

// OpenWeatherProvider implements the weather.Fetcher interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	log      zerolog.Logger
	recorder AttemptRecorder
	now      func() time.Time
}

// OpenWeatherOption customizes an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

// WithBaseURL overrides the current weather endpoint.
func WithBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithRecorder reports every request attempt to r.
func WithRecorder(r AttemptRecorder) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		p.recorder = r
	}
}

// WithClock overrides the capture clock.
func WithClock(now func() time.Time) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		p.now = now
	}
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, retry RetryPolicy, log zerolog.Logger, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: DefaultOpenWeatherURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Retry:  retry,
		},
		log: log.With().Str("component", "extractor").Logger(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch returns the current weather for city. Permanent failures (401, 404,
// undecodable body) are returned immediately; anything else is retried by
// the provider's RetryPolicy.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("%w: openweather api key is not configured", weather.ErrInvalidAPIKey)
	}
	if p.httpCfg.Client == nil {
		return weather.Reading{}, errNoHTTPClient
	}

	log := p.log.With().Str("city", city).Logger()

	var reading weather.Reading
	err := retryFixed(ctx, p.httpCfg.Retry, log, func(ctx context.Context) error {
		log.Info().Msgf("fetching weather for %s", city)

		r, err := p.fetchOnce(ctx, city)
		if p.recorder != nil {
			p.recorder.RequestAttempt(p.name, outcome(err))
		}
		if err != nil {
			return err
		}

		reading = r
		return nil
	})

	switch {
	case err == nil:
		log.Info().Msgf("success! %s: %.2f°C, %s", city, reading.Temperature, reading.WeatherDescription)
		return reading, nil
	case errors.Is(err, weather.ErrInvalidAPIKey):
		log.Error().Err(err).Msg("invalid api key")
	case errors.Is(err, weather.ErrCityNotFound):
		log.Error().Err(err).Msgf("city not found: %s", city)
	default:
		log.Error().Err(err).Msgf("failed to fetch %s", city)
	}

	return weather.Reading{}, err
}

func (p *OpenWeatherProvider) fetchOnce(ctx context.Context, city string) (weather.Reading, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return weather.Reading{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpCfg.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return weather.Reading{}, ctx.Err()
		}
		// Timeouts and connection failures are both worth another attempt.
		return weather.Reading{}, fmt.Errorf("%w: %w", weather.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return weather.Reading{}, err
	}

	var payload openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("%w: %w", weather.ErrInvalidPayload, err)
	}

	return payload.toReading(city, p.now())
}

// openWeatherResponse is the subset of the current weather payload we map.
// Sections that must be present are pointers so their absence is detectable.
type openWeatherResponse struct {
	Coord *struct {
		Lon float64 `json:"lon"`
		Lat float64 `json:"lat"`
	} `json:"coord"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
}

func (r openWeatherResponse) toReading(city string, capturedAt time.Time) (weather.Reading, error) {
	if r.Main == nil {
		return weather.Reading{}, fmt.Errorf("%w: missing main section", weather.ErrInvalidPayload)
	}
	if len(r.Weather) == 0 {
		return weather.Reading{}, fmt.Errorf("%w: no weather conditions returned", weather.ErrInvalidPayload)
	}
	if r.Coord == nil {
		return weather.Reading{}, fmt.Errorf("%w: missing coordinates", weather.ErrInvalidPayload)
	}

	country := r.Sys.Country
	if country == "" {
		country = unknownCountry
	}

	return weather.Reading{
		City:               city,
		Country:            country,
		Timestamp:          capturedAt,
		Temperature:        weather.KelvinToCelsius(r.Main.Temp),
		FeelsLike:          weather.KelvinToCelsius(r.Main.FeelsLike),
		TempMin:            weather.KelvinToCelsius(r.Main.TempMin),
		TempMax:            weather.KelvinToCelsius(r.Main.TempMax),
		Humidity:           r.Main.Humidity,
		Pressure:           r.Main.Pressure,
		WeatherMain:        r.Weather[0].Main,
		WeatherDescription: r.Weather[0].Description,
		WindSpeed:          r.Wind.Speed,
		WindDirection:      r.Wind.Deg,
		Cloudiness:         r.Clouds.All,
		Visibility:         r.Visibility,
		Latitude:           r.Coord.Lat,
		Longitude:          r.Coord.Lon,
	}, nil
}
