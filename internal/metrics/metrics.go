// Package metrics provides Prometheus metrics for pipeline runs and the dashboard.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-pipeline/internal/weather"
)

// PipelineMetrics records extraction and load outcomes.
type PipelineMetrics struct {
	requestAttempts *prometheus.CounterVec
	citiesExtracted *prometheus.CounterVec
	cityFailures    *prometheus.CounterVec
	recordsLoaded   prometheus.Counter
	recordsFailed   prometheus.Counter
	runs            *prometheus.CounterVec
	dashboardLoads  *prometheus.CounterVec
}

// NewPipelineMetrics creates and registers the collectors on registry.
func NewPipelineMetrics(registry prometheus.Registerer) (*PipelineMetrics, error) {
	m := &PipelineMetrics{
		requestAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_request_attempts_total",
				Help: "Total number of weather API request attempts",
			},
			[]string{"provider", "outcome"},
		),
		citiesExtracted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_cities_extracted_total",
				Help: "Total number of cities extracted successfully",
			},
			[]string{"provider"},
		),
		cityFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_city_failures_total",
				Help: "Total number of cities dropped from a batch",
			},
			[]string{"provider", "kind"}, // kind: permanent, transient, circuit_open, other
		),
		recordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_records_loaded_total",
			Help: "Total number of weather readings persisted",
		}),
		recordsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_records_failed_total",
			Help: "Total number of weather readings that failed to persist",
		}),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_pipeline_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"status"}, // status: success, no_data, error
		),
		dashboardLoads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_dashboard_history_loads_total",
				Help: "Total number of dashboard history loads",
			},
			[]string{"source"}, // source: cache, database
		),
	}

	for _, c := range []prometheus.Collector{
		m.requestAttempts, m.citiesExtracted, m.cityFailures,
		m.recordsLoaded, m.recordsFailed, m.runs, m.dashboardLoads,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RequestAttempt implements providers.AttemptRecorder.
func (m *PipelineMetrics) RequestAttempt(provider, outcome string) {
	m.requestAttempts.WithLabelValues(provider, outcome).Inc()
}

// CityExtracted implements weather.Recorder.
func (m *PipelineMetrics) CityExtracted(provider string) {
	m.citiesExtracted.WithLabelValues(provider).Inc()
}

// CityFailed implements weather.Recorder.
func (m *PipelineMetrics) CityFailed(provider string, err error) {
	m.cityFailures.WithLabelValues(provider, failureKind(err)).Inc()
}

// ReadingLoaded implements store.Recorder.
func (m *PipelineMetrics) ReadingLoaded() {
	m.recordsLoaded.Inc()
}

// ReadingFailed implements store.Recorder.
func (m *PipelineMetrics) ReadingFailed() {
	m.recordsFailed.Inc()
}

// RunFinished counts a pipeline run by status.
func (m *PipelineMetrics) RunFinished(status string) {
	m.runs.WithLabelValues(status).Inc()
}

// HistoryLoaded counts a dashboard history load by source.
func (m *PipelineMetrics) HistoryLoaded(source string) {
	m.dashboardLoads.WithLabelValues(source).Inc()
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, weather.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, weather.ErrInvalidAPIKey),
		errors.Is(err, weather.ErrCityNotFound),
		errors.Is(err, weather.ErrInvalidPayload):
		return "permanent"
	case errors.Is(err, weather.ErrRetriesExhausted), errors.Is(err, weather.ErrTransient):
		return "transient"
	default:
		return "other"
	}
}
