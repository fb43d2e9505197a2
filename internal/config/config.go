package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Validate when no weather API key is configured.
var ErrMissingAPIKey = errors.New("weather api key is not configured")

// DefaultCities is the static list of tracked cities used when WEATHER_CITIES is unset.
var DefaultCities = []string{
	"Boston",
	"New York",
	"San Francisco",
	"Miami",
	"Los Angeles",
	"San Diego",
	"Seattle",
	"Austin",
	"Denver",
	"Atlanta",
}

// DefaultBreakerFailureThreshold is the number of consecutive cities rejected
// for credentials after which the rest of a run is skipped.
const DefaultBreakerFailureThreshold = 5

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type AppConfig struct {
	APIKey  string
	BaseURL string

	// Cities to extract, in order.
	Cities []string

	// Retry behaviour for a single city. Total attempts are 1 + MaxRetries.
	MaxRetries     int
	RequestTimeout time.Duration
	RetryDelay     time.Duration

	// CityDelay is slept after every city regardless of outcome.
	CityDelay time.Duration

	// BreakerFailureThreshold is the number of consecutive cities rejected
	// with an invalid API key after which the remaining cities of a run are
	// skipped. Transient and unknown-city failures never count.
	BreakerFailureThreshold int

	Database DatabaseConfig

	DataDir  string
	LogDir   string
	LogLevel string

	// FetchInterval controls how often the schedule command runs the pipeline.
	FetchInterval time.Duration

	// Dashboard settings.
	Port     string
	CacheTTL time.Duration
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	Path     string // sqlite only
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.APIKey = os.Getenv("WEATHER_API_KEY")
	cfg.BaseURL = getenvDefault("WEATHER_BASE_URL", "http://api.openweathermap.org/data/2.5/weather")
	cfg.Cities = loadCities()

	var err error
	if cfg.MaxRetries, err = getenvInt("MAX_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("invalid MAX_RETRIES: must not be negative")
	}
	if cfg.RequestTimeout, err = getenvDuration("REQUEST_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.RetryDelay, err = getenvDuration("RETRY_DELAY", "2s"); err != nil {
		return nil, err
	}
	if cfg.CityDelay, err = getenvDuration("CITY_DELAY", "500ms"); err != nil {
		return nil, err
	}
	if cfg.BreakerFailureThreshold, err = getenvInt("BREAKER_FAILURE_THRESHOLD", DefaultBreakerFailureThreshold); err != nil {
		return nil, err
	}

	cfg.Database = DatabaseConfig{
		Driver:   strings.ToLower(getenvDefault("DB_DRIVER", DriverPostgres)),
		Host:     getenvDefault("DB_HOST", "localhost"),
		Port:     getenvDefault("DB_PORT", "5432"),
		Name:     getenvDefault("DB_NAME", "weather_pipeline"),
		User:     getenvDefault("DB_USER", "weather_user"),
		Password: getenvDefault("DB_PASSWORD", "weather123"),
		Path:     getenvDefault("DB_PATH", "weather_pipeline.db"),
	}
	switch cfg.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected postgres, mysql or sqlite", cfg.Database.Driver)
	}

	cfg.DataDir = getenvDefault("DATA_DIR", "data")
	cfg.LogDir = getenvDefault("LOG_DIR", "logs")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")
	if cfg.CacheTTL, err = getenvDuration("DASHBOARD_CACHE_TTL", "5m"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings required before any network activity.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if len(c.Cities) == 0 {
		return errors.New("no cities configured")
	}
	return nil
}

// DSN returns the driver specific connection string.
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	case DriverSQLite:
		return d.Path
	default:
		u := url.URL{
			Scheme: "postgresql",
			User:   url.UserPassword(d.User, d.Password),
			Host:   d.Host + ":" + d.Port,
			Path:   "/" + d.Name,
		}
		return u.String()
	}
}

func loadCities() []string {
	raw := os.Getenv("WEATHER_CITIES")
	if raw == "" {
		return append([]string(nil), DefaultCities...)
	}

	var cities []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	return cities
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
