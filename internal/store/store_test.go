package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/i474232898/weather-pipeline/internal/config"
	"github.com/i474232898/weather-pipeline/internal/weather"
)

const failingTemperature = -999

// newTestStore opens a file backed SQLite database in a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "weather.db"),
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// failInsertsAt makes any weather_data insert with temp fail inside its transaction.
func failInsertsAt(t *testing.T, s *Store, temp float64) {
	t.Helper()

	err := s.DB.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(tx *gorm.DB) {
		if row, ok := tx.Statement.Dest.(*WeatherData); ok && row.Temperature == temp {
			_ = tx.AddError(errors.New("simulated insert failure"))
		}
	})
	require.NoError(t, err)
}

type countingRecorder struct {
	loaded, failed int
}

func (c *countingRecorder) ReadingLoaded() { c.loaded++ }
func (c *countingRecorder) ReadingFailed() { c.failed++ }

func reading(city string, at time.Time, temp float64) weather.Reading {
	return weather.Reading{
		City:               city,
		Country:            "US",
		Timestamp:          at,
		Temperature:        temp,
		FeelsLike:          temp - 1,
		TempMin:            temp - 2,
		TempMax:            temp + 2,
		Humidity:           70,
		Pressure:           1012,
		WeatherMain:        "Clouds",
		WeatherDescription: "broken clouds",
		WindSpeed:          3.5,
		WindDirection:      180,
		Cloudiness:         75,
		Visibility:         10000,
		Latitude:           47.6062,
		Longitude:          -122.3321,
	}
}

func counts(t *testing.T, s *Store) (cities, readings int64) {
	t.Helper()
	ctx := context.Background()

	cities, err := s.CountCities(ctx)
	require.NoError(t, err)
	readings, err = s.CountReadings(ctx)
	require.NoError(t, err)
	return cities, readings
}

func TestLoadAll_SameCityTwiceCreatesOneCity(t *testing.T) {
	s := newTestStore(t)
	loader := NewLoader(s, zerolog.Nop(), nil)
	now := time.Now().UTC()

	ok, failed := loader.LoadAll(context.Background(), []weather.Reading{
		reading("Boston", now, 5),
		reading("Boston", now.Add(time.Minute), 6),
	})

	assert.Equal(t, 2, ok)
	assert.Zero(t, failed)

	cities, readings := counts(t, s)
	assert.Equal(t, int64(1), cities)
	assert.Equal(t, int64(2), readings)

	var rows []WeatherData
	require.NoError(t, s.DB.Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0].CityID, rows[1].CityID)
}

func TestLoadReading_SeattleTwice(t *testing.T) {
	s := newTestStore(t)
	loader := NewLoader(s, zerolog.Nop(), nil)
	ctx := context.Background()
	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, loader.LoadReading(ctx, reading("Seattle", first, 14)))
	cities, readings := counts(t, s)
	assert.Equal(t, int64(1), cities)
	assert.Equal(t, int64(1), readings)

	require.NoError(t, loader.LoadReading(ctx, reading("Seattle", first.Add(15*time.Minute), 15)))
	cities, readings = counts(t, s)
	assert.Equal(t, int64(1), cities, "cities count unchanged after the first insert")
	assert.Equal(t, int64(2), readings)
}

func TestGetOrCreateCity_NeverUpdatesExisting(t *testing.T) {
	s := newTestStore(t)
	loader := NewLoader(s, zerolog.Nop(), nil)

	r := reading("Miami", time.Now(), 28)
	id1, err := loader.GetOrCreateCity(s.DB, r)
	require.NoError(t, err)

	r.Country = "XX"
	r.Latitude = 0
	id2, err := loader.GetOrCreateCity(s.DB, r)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	var city City
	require.NoError(t, s.DB.First(&city, id1).Error)
	assert.Equal(t, "US", city.Country)
	assert.Equal(t, 47.6062, city.Latitude)
}

func TestLoadAll_FailedRecordRollsBackAndContinues(t *testing.T) {
	s := newTestStore(t)
	failInsertsAt(t, s, failingTemperature)
	rec := &countingRecorder{}
	loader := NewLoader(s, zerolog.Nop(), rec)
	now := time.Now().UTC()

	ok, failed := loader.LoadAll(context.Background(), []weather.Reading{
		reading("Boston", now, 5),
		reading("Atlantis", now, failingTemperature),
		reading("Denver", now, 10),
	})

	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, rec.loaded)
	assert.Equal(t, 1, rec.failed)

	cities, readings := counts(t, s)
	assert.Equal(t, int64(2), cities, "the city created for the failed record is rolled back")
	assert.Equal(t, int64(2), readings)
}

func TestLoadAll_TallySumsToInput(t *testing.T) {
	s := newTestStore(t)
	failInsertsAt(t, s, failingTemperature)
	loader := NewLoader(s, zerolog.Nop(), nil)
	now := time.Now().UTC()

	tests := []struct {
		name     string
		readings []weather.Reading
	}{
		{"empty", nil},
		{"all failing", []weather.Reading{reading("A", now, failingTemperature), reading("B", now, failingTemperature)}},
		{"mixed", []weather.Reading{reading("A", now, 1), reading("B", now, failingTemperature), reading("C", now, 3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, failed := loader.LoadAll(context.Background(), tt.readings)
			assert.Equal(t, len(tt.readings), ok+failed)
		})
	}
}

func TestHistory_EmptyStore(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.History(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestHistory_JoinedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	loader := NewLoader(s, zerolog.Nop(), nil)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	loader.LoadAll(context.Background(), []weather.Reading{
		reading("Boston", base, 5),
		reading("Austin", base.Add(2*time.Hour), 30),
		reading("Boston", base.Add(time.Hour), 7),
	})

	rows, err := s.History(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Austin", rows[0].CityName)
	assert.Equal(t, "Boston", rows[1].CityName)
	assert.Equal(t, 7.0, rows[1].Temperature)
	assert.Equal(t, "Boston", rows[2].CityName)
	assert.True(t, rows[0].Timestamp.Equal(base.Add(2*time.Hour)))

	assert.Equal(t, "US", rows[0].Country)
	assert.Equal(t, 47.6062, rows[0].Latitude)
	assert.Equal(t, "broken clouds", rows[0].WeatherDescription)
	assert.Equal(t, 10000, rows[0].Visibility)
	assert.Equal(t, 180.0, rows[0].WindDirection)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpen_MigrationFailureReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflict.db")

	raw, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, raw.Exec("CREATE VIEW weather_data AS SELECT 1 AS id").Error)
	sqlDB, err := raw.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	s, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, zerolog.Nop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to auto-migrate")
	assert.Nil(t, s)
}

func TestDeferredLoader_UnreachableDatabaseCountsEveryReadingFailed(t *testing.T) {
	rec := &countingRecorder{}
	cfg := config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "missing", "dir", "weather.db"),
	}
	l := NewDeferredLoader(cfg, zerolog.Nop(), rec)
	t.Cleanup(func() { _ = l.Close() })

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	success, failed := l.LoadAll(context.Background(), []weather.Reading{
		reading("Boston", base, 10),
		reading("Miami", base, 30),
	})

	assert.Zero(t, success)
	assert.Equal(t, 2, failed)
	assert.Equal(t, 2, rec.failed)
	assert.Zero(t, rec.loaded)
}

func TestDeferredLoader_OpensOnFirstLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weather.db")
	l := NewDeferredLoader(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, zerolog.Nop(), nil)

	assert.NoFileExists(t, path)

	success, failed := l.LoadAll(context.Background(), []weather.Reading{
		reading("Seattle", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 12),
	})
	assert.Equal(t, 1, success)
	assert.Zero(t, failed)
	assert.FileExists(t, path)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
