package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

// RetryPolicy is a fixed-delay retry budget. There is no backoff growth and no jitter.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// Delay is slept between attempts.
	Delay time.Duration
}

// HTTPClientConfig bundles HTTP client and retry settings.
type HTTPClientConfig struct {
	Client *http.Client
	Retry  RetryPolicy
}

// AttemptRecorder observes every request attempt. A nil recorder is allowed.
type AttemptRecorder interface {
	RequestAttempt(provider, outcome string)
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidPolicy = errors.New("invalid retry policy")
)

// classifyStatus maps a non-200 response status to the failure taxonomy.
// Only 401 and 404 are permanent; everything else is worth retrying.
func classifyStatus(code int) error {
	switch code {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return weather.ErrInvalidAPIKey
	case http.StatusNotFound:
		return weather.ErrCityNotFound
	default:
		return fmt.Errorf("%w: status %d", weather.ErrTransient, code)
	}
}

// outcome is the metrics label for a single attempt.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, weather.ErrInvalidAPIKey):
		return "unauthorized"
	case errors.Is(err, weather.ErrCityNotFound):
		return "not_found"
	case errors.Is(err, weather.ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, weather.ErrTransient):
		return "transient"
	default:
		return "error"
	}
}

// retryFixed runs attempt until it succeeds, fails permanently or the policy
// is exhausted. Only errors wrapping weather.ErrTransient are retried, so the
// total number of calls is at most 1 + MaxRetries.
func retryFixed(ctx context.Context, policy RetryPolicy, log zerolog.Logger, attempt func(ctx context.Context) error) error {
	if policy.MaxRetries < 0 || policy.Delay < 0 {
		return errInvalidPolicy
	}

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, weather.ErrTransient) {
			return err
		}

		if n >= policy.MaxRetries {
			return fmt.Errorf("%w after %d attempts: %w", weather.ErrRetriesExhausted, n+1, err)
		}

		log.Warn().Err(err).Msgf("retrying (attempt %d/%d)", n+1, policy.MaxRetries)

		if err := sleep(ctx, policy.Delay); err != nil {
			return err
		}
	}
}

// sleep waits for d or until ctx is done.
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
