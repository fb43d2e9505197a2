package httpapi

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/store"
)

const historyCacheKey = "history"

// HistorySource reads the persisted reading history, newest first.
type HistorySource interface {
	History(ctx context.Context) ([]store.HistoryRow, error)
}

// HistoryRecorder counts history loads by source. A nil recorder is allowed.
type HistoryRecorder interface {
	HistoryLoaded(source string)
}

// Dashboard serves a cached, read-only view over the history.
type Dashboard struct {
	source   HistorySource
	cache    *cache.Cache
	recorder HistoryRecorder
	log      zerolog.Logger
}

// NewDashboard creates a Dashboard caching the history for ttl.
func NewDashboard(source HistorySource, ttl time.Duration, recorder HistoryRecorder, log zerolog.Logger) *Dashboard {
	return &Dashboard{
		source:   source,
		cache:    cache.New(ttl, 2*ttl),
		recorder: recorder,
		log:      log.With().Str("component", "dashboard").Logger(),
	}
}

// History returns the cached history, querying the store on a miss.
func (d *Dashboard) History(ctx context.Context) ([]store.HistoryRow, error) {
	if v, ok := d.cache.Get(historyCacheKey); ok {
		if rows, ok := v.([]store.HistoryRow); ok {
			d.loaded("cache")
			return rows, nil
		}
	}

	rows, err := d.source.History(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to load weather history")
		return nil, err
	}

	d.cache.SetDefault(historyCacheKey, rows)
	d.loaded("database")
	return rows, nil
}

// Refresh drops the cached history.
func (d *Dashboard) Refresh() {
	d.cache.Delete(historyCacheKey)
}

func (d *Dashboard) loaded(source string) {
	if d.recorder != nil {
		d.recorder.HistoryLoaded(source)
	}
}
