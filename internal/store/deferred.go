package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/config"
	"github.com/i474232898/weather-pipeline/internal/weather"
)

// DeferredLoader connects to the database on the first load instead of at
// startup, so extraction and the CSV snapshot never depend on the database
// being reachable. A failed connection is retried on the next load.
type DeferredLoader struct {
	cfg      config.DatabaseConfig
	log      zerolog.Logger
	recorder Recorder

	mu     sync.Mutex
	store  *Store
	loader *Loader
}

// NewDeferredLoader creates a DeferredLoader. recorder may be nil.
func NewDeferredLoader(cfg config.DatabaseConfig, log zerolog.Logger, recorder Recorder) *DeferredLoader {
	return &DeferredLoader{
		cfg:      cfg,
		log:      log.With().Str("component", "loader").Logger(),
		recorder: recorder,
	}
}

// LoadAll stores readings like Loader.LoadAll. When the database cannot be
// opened every reading is counted as failed.
func (d *DeferredLoader) LoadAll(ctx context.Context, readings []weather.Reading) (success, failed int) {
	l, err := d.open()
	if err != nil {
		d.log.Error().Err(err).Msgf("database connection failed, %d records not loaded", len(readings))
		if d.recorder != nil {
			for range readings {
				d.recorder.ReadingFailed()
			}
		}
		return 0, len(readings)
	}

	return l.LoadAll(ctx, readings)
}

// Close releases the connection if one was opened.
func (d *DeferredLoader) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.store == nil {
		return nil
	}
	err := d.store.Close()
	d.store, d.loader = nil, nil
	return err
}

func (d *DeferredLoader) open() (*Loader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loader != nil {
		return d.loader, nil
	}

	s, err := Open(d.cfg, d.log)
	if err != nil {
		return nil, err
	}

	d.store = s
	d.loader = NewLoader(s, d.log, d.recorder)
	return d.loader, nil
}
