package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

func TestExtractAll_BostonAndUnknownCity(t *testing.T) {
	p, transport := newTestProvider(t, 3)
	transport.RegisterResponderWithQuery(http.MethodGet, testURL, cityQuery("Boston"),
		httpmock.NewStringResponder(http.StatusOK, bostonResponse))
	transport.RegisterResponderWithQuery(http.MethodGet, testURL, cityQuery("InvalidCity123"),
		httpmock.NewStringResponder(http.StatusNotFound, `{"cod":"404","message":"city not found"}`))

	e := weather.NewExtractor(p, zerolog.Nop(), weather.ExtractorConfig{BreakerFailureThreshold: 5})
	result := e.ExtractAll(context.Background(), []string{"Boston", "InvalidCity123"})

	require.Len(t, result.Readings, 1)
	assert.Equal(t, "Boston", result.Readings[0].City)
	assert.Equal(t, 1, result.Failed())
	assert.ErrorIs(t, result.Failures[0].Err, weather.ErrCityNotFound)
	assert.Equal(t, 2, transport.GetTotalCallCount(), "the unknown city must not be retried")
}
