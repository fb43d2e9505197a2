// Package pipeline runs one extract-then-load pass over the configured cities.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/config"
	"github.com/i474232898/weather-pipeline/internal/export"
	"github.com/i474232898/weather-pipeline/internal/weather"
)

// Extractor produces readings for a batch of cities.
type Extractor interface {
	ExtractAll(ctx context.Context, cities []string) weather.ExtractionResult
}

// Loader persists readings and reports the tally.
type Loader interface {
	LoadAll(ctx context.Context, readings []weather.Reading) (success, failed int)
}

// RunRecorder counts finished runs. A nil RunRecorder is allowed.
type RunRecorder interface {
	RunFinished(status string)
}

// Report summarizes one run.
type Report struct {
	RunID         string
	Extracted     int
	ExtractFailed int
	Loaded        int
	LoadFailed    int
	SnapshotPath  string
	Summary       weather.RunSummary
	Failures      []weather.CityFailure
}

type Pipeline struct {
	cfg       *config.AppConfig
	extractor Extractor
	loader    Loader
	recorder  RunRecorder
	log       zerolog.Logger
	now       func() time.Time
}

// New creates a Pipeline. recorder may be nil.
func New(cfg *config.AppConfig, extractor Extractor, loader Loader, recorder RunRecorder, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		loader:    loader,
		recorder:  recorder,
		log:       log.With().Str("component", "pipeline").Logger(),
		now:       time.Now,
	}
}

// Run validates the configuration, extracts every city, writes the CSV
// snapshot and loads the readings. A missing API key stops the run before
// any request is made; a run without any reading returns weather.ErrNoReadings
// and loads nothing.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := p.log.With().Str("run_id", report.RunID).Logger()

	log.Info().Msg("weather data pipeline started")

	if err := p.cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			log.Error().Err(err).Msg("no API key found, check your .env file")
		} else {
			log.Error().Err(err).Msg("invalid pipeline configuration")
		}
		p.finished("error")
		return report, fmt.Errorf("invalid configuration: %w", err)
	}

	result := p.extractor.ExtractAll(ctx, p.cfg.Cities)
	report.Extracted = result.Succeeded()
	report.ExtractFailed = result.Failed()
	report.Failures = result.Failures
	report.Summary = weather.Summarize(result.Readings)

	if result.Empty() {
		log.Error().Msg("no data to save")
		p.finished("no_data")
		return report, weather.ErrNoReadings
	}

	if p.cfg.DataDir != "" {
		path, err := export.WriteSnapshot(p.cfg.DataDir, result.Readings, p.now())
		if err != nil {
			log.Warn().Err(err).Msg("failed to write csv snapshot")
		} else {
			report.SnapshotPath = path
			log.Info().Msgf("data saved to %s", path)
		}
	}

	report.Loaded, report.LoadFailed = p.loader.LoadAll(ctx, result.Readings)

	log.Info().
		Int("extracted", report.Extracted).
		Int("extract_failed", report.ExtractFailed).
		Int("loaded", report.Loaded).
		Int("load_failed", report.LoadFailed).
		Msg("pipeline completed")

	p.finished("success")
	return report, nil
}

func (p *Pipeline) finished(status string) {
	if p.recorder != nil {
		p.recorder.RunFinished(status)
	}
}
