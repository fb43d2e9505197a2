package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/i474232898/weather-pipeline/internal/config"
)

const slowQueryThreshold = 200 * time.Millisecond

// Store owns the relational connection used by the loader and the dashboard.
type Store struct {
	DB     *gorm.DB
	Driver string
	log    zerolog.Logger
}

// Open connects to the configured database and creates the schema if needed.
func Open(cfg config.DatabaseConfig, log zerolog.Logger) (*Store, error) {
	log = log.With().Str("component", "store").Str("db_type", cfg.Driver).Logger()

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(log, slowQueryThreshold)})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s connection pool: %w", cfg.Driver, err)
	}

	if cfg.Driver == config.DriverSQLite {
		// One writer at a time; SQLite serializes writes anyway.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&City{}, &WeatherData{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to auto-migrate %s database: %w", cfg.Driver, err)
	}

	log.Debug().Msg("database connection initialized")

	return &Store{DB: db, Driver: cfg.Driver, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CountCities returns the number of rows in cities.
func (s *Store) CountCities(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&City{}).Count(&n).Error
	return n, err
}

// CountReadings returns the number of rows in weather_data.
func (s *Store) CountReadings(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&WeatherData{}).Count(&n).Error
	return n, err
}

// gormLogger routes GORM output to zerolog. SQL statements are logged at
// trace level, slow statements and query errors at warn.
type gormLogger struct {
	log           zerolog.Logger
	slowThreshold time.Duration
}

func newGormLogger(log zerolog.Logger, slowThreshold time.Duration) gormlogger.Interface {
	return &gormLogger{log: log, slowThreshold: slowThreshold}
}

func (g *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	g.log.Debug().Msgf(msg, data...)
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	g.log.Warn().Msgf(msg, data...)
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	g.log.Error().Msgf(msg, data...)
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		g.log.Warn().Err(err).Str("sql", sql).Int64("rows_affected", rows).Dur("duration", elapsed).Msg("query error")
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		g.log.Warn().Str("sql", sql).Int64("rows_affected", rows).Dur("duration", elapsed).Msg("slow query")
	default:
		g.log.Trace().Str("sql", sql).Int64("rows_affected", rows).Dur("duration", elapsed).Msg("sql query")
	}
}
