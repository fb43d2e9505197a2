package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

// Recorder receives per-record load outcomes. A nil Recorder is allowed.
type Recorder interface {
	ReadingLoaded()
	ReadingFailed()
}

// Loader persists extracted readings, resolving their city first.
type Loader struct {
	db       *gorm.DB
	log      zerolog.Logger
	recorder Recorder
}

// NewLoader creates a Loader on top of s.
func NewLoader(s *Store, log zerolog.Logger, recorder Recorder) *Loader {
	return &Loader{
		db:       s.DB,
		log:      log.With().Str("component", "loader").Logger(),
		recorder: recorder,
	}
}

// GetOrCreateCity returns the id of the city named r.City, inserting it on
// first sighting. Existing cities are never updated.
//
// The lookup and insert are not atomic: concurrent loaders could race on the
// unique city_name index. The pipeline runs a single sequential loader.
func (l *Loader) GetOrCreateCity(tx *gorm.DB, r weather.Reading) (uint, error) {
	var city City
	err := tx.Where("city_name = ?", r.City).First(&city).Error
	if err == nil {
		l.log.Debug().Msgf("city %s already exists (ID: %d)", city.Name, city.ID)
		return city.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to look up city %s: %w", r.City, err)
	}

	city = City{
		Name:      r.City,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
	if err := tx.Create(&city).Error; err != nil {
		return 0, fmt.Errorf("failed to create city %s: %w", r.City, err)
	}

	l.log.Info().Msgf("created new city: %s (ID: %d)", city.Name, city.ID)
	return city.ID, nil
}

// LoadReading stores one reading in its own transaction. On failure nothing
// of the record is kept, including a city created for it.
func (l *Loader) LoadReading(ctx context.Context, r weather.Reading) error {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cityID, err := l.GetOrCreateCity(tx, r)
		if err != nil {
			return err
		}

		row := newWeatherData(cityID, r)
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert weather data: %w", err)
		}
		return nil
	})
	if err != nil {
		l.log.Error().Err(err).Str("city", r.City).Msgf("failed to load data for %s", r.City)
		return err
	}

	l.log.Info().Str("city", r.City).Msgf("loaded weather data for %s", r.City)
	return nil
}

// LoadAll stores every reading and returns the success and failure tally.
// Errors are logged and counted, never returned; success+failed always
// equals len(readings).
func (l *Loader) LoadAll(ctx context.Context, readings []weather.Reading) (success, failed int) {
	l.log.Info().Msgf("loading %d weather records to database...", len(readings))

	for _, r := range readings {
		if err := l.LoadReading(ctx, r); err != nil {
			failed++
			if l.recorder != nil {
				l.recorder.ReadingFailed()
			}
			continue
		}
		success++
		if l.recorder != nil {
			l.recorder.ReadingLoaded()
		}
	}

	l.log.Info().Msgf("loading complete: %d successful, %d failed", success, failed)
	return success, failed
}
