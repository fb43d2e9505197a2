package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/config"
	"github.com/i474232898/weather-pipeline/internal/logging"
	"github.com/i474232898/weather-pipeline/internal/metrics"
	"github.com/i474232898/weather-pipeline/internal/pipeline"
	"github.com/i474232898/weather-pipeline/internal/store"
	"github.com/i474232898/weather-pipeline/internal/weather"
	"github.com/i474232898/weather-pipeline/internal/weather/providers"
)

// app holds the components shared by every command. Nothing here touches
// the network; the database is opened by the command that needs it.
type app struct {
	cfg      *config.AppConfig
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *metrics.PipelineMetrics

	store    *store.Store
	loader   *store.DeferredLoader
	closeLog func() error
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, closeLog, err := logging.New(logging.Options{
		Dir:     cfg.LogDir,
		Level:   cfg.LogLevel,
		Console: os.Stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.NewPipelineMetrics(registry)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  m,
		closeLog: closeLog,
	}, nil
}

// validate halts a pipeline command before any network activity when the
// credentials or the city list are missing.
func (a *app) validate() error {
	if err := a.cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			a.log.Error().Err(err).Msg("no API key found, check your .env file")
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// openStore connects to the database for the dashboard.
func (a *app) openStore() (*store.Store, error) {
	s, err := store.Open(a.cfg.Database, a.log)
	if err != nil {
		a.log.Error().Err(err).Msg("database connection failed")
		return nil, err
	}
	a.store = s
	return s, nil
}

func (a *app) pipeline() *pipeline.Pipeline {
	httpClient := &http.Client{
		Timeout: a.cfg.RequestTimeout,
	}

	provider := providers.NewOpenWeatherProvider(
		httpClient,
		a.cfg.APIKey,
		providers.RetryPolicy{MaxRetries: a.cfg.MaxRetries, Delay: a.cfg.RetryDelay},
		a.log,
		providers.WithBaseURL(a.cfg.BaseURL),
		providers.WithRecorder(a.metrics),
	)

	extractor := weather.NewExtractor(provider, a.log, weather.ExtractorConfig{
		CityDelay:               a.cfg.CityDelay,
		BreakerFailureThreshold: a.cfg.BreakerFailureThreshold,
		Recorder:                a.metrics,
	})

	a.loader = store.NewDeferredLoader(a.cfg.Database, a.log, a.metrics)

	return pipeline.New(a.cfg, extractor, a.loader, a.metrics, a.log)
}

func (a *app) close() {
	if a.loader != nil {
		if err := a.loader.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close database")
		}
	}
	_ = a.closeLog()
}
