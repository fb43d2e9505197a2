package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is recorded for cities skipped after too many consecutive failures.
var ErrCircuitOpen = errors.New("circuit breaker open")

// ExtractorConfig tunes a batch extraction.
type ExtractorConfig struct {
	// CityDelay is slept after every city that reached the provider.
	CityDelay time.Duration
	// BreakerFailureThreshold opens the circuit after that many consecutive
	// cities rejected with ErrInvalidAPIKey. Other failures never count.
	// Zero or less disables the breaker.
	BreakerFailureThreshold int
	Recorder                Recorder
}

// Extractor fetches readings for a list of cities, one at a time.
type Extractor struct {
	fetcher Fetcher
	cfg     ExtractorConfig
	log     zerolog.Logger
}

// NewExtractor creates a new Extractor.
func NewExtractor(fetcher Fetcher, log zerolog.Logger, cfg ExtractorConfig) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.With().Str("component", "extractor").Logger(),
	}
}

// ExtractAll fetches every city sequentially, collecting successes in order
// and recording each dropped city. It never fails as a whole; callers check
// ExtractionResult.Empty.
func (e *Extractor) ExtractAll(ctx context.Context, cities []string) ExtractionResult {
	e.log.Info().Msgf("starting extraction for %d cities", len(cities))
	e.log.Info().Msg(strings.Repeat("=", 60))

	cb := e.newBreaker()
	result := ExtractionResult{Readings: make([]Reading, 0, len(cities))}

	for i, city := range cities {
		if err := ctx.Err(); err != nil {
			for _, skipped := range cities[i:] {
				result.Failures = append(result.Failures, CityFailure{City: skipped, Err: err})
			}
			break
		}

		out, err := cb.Execute(func() (interface{}, error) {
			return e.fetcher.Fetch(ctx, city)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				err = fmt.Errorf("%w: skipping %s", ErrCircuitOpen, city)
				e.log.Error().Err(err).Str("city", city).Msg("city skipped")
			}
			result.Failures = append(result.Failures, CityFailure{City: city, Err: err})
			if e.cfg.Recorder != nil {
				e.cfg.Recorder.CityFailed(e.fetcher.Name(), err)
			}
		} else {
			result.Readings = append(result.Readings, out.(Reading))
			if e.cfg.Recorder != nil {
				e.cfg.Recorder.CityExtracted(e.fetcher.Name())
			}
		}

		// Provider courtesy throttling, applied regardless of outcome.
		if err := sleep(ctx, e.cfg.CityDelay); err != nil {
			e.log.Warn().Err(err).Msg("extraction interrupted")
		}
	}

	e.log.Info().Msg(strings.Repeat("=", 60))
	e.log.Info().Msgf("extraction complete: %d successful, %d failed", result.Succeeded(), result.Failed())

	if result.Empty() {
		e.log.Error().Msg("no data extracted")
	}

	return result
}

// newBreaker returns a closed breaker scoped to one batch. Only a rejected
// API key counts as a failure: it holds for every city, while transient and
// per-city errors are handled by retries and the next city.
func (e *Extractor) newBreaker() *gobreaker.CircuitBreaker {
	threshold := e.cfg.BreakerFailureThreshold

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        e.fetcher.Name(),
		MaxRequests: 1,
		Timeout:     24 * time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= uint32(threshold)
		},
		IsSuccessful: func(err error) bool {
			return !errors.Is(err, ErrInvalidAPIKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.log.Warn().Str("breaker", name).Msgf("circuit breaker %s -> %s", from, to)
		},
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
