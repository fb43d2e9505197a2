package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/weather-pipeline/internal/pipeline"
)

// Runner is one pipeline pass.
type Runner interface {
	Run(ctx context.Context) (pipeline.Report, error)
}

// Scheduler periodically runs the pipeline. Runs never overlap: a run that
// outlasts the interval delays the next one instead of starting a second.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	log       zerolog.Logger
	ctx       context.Context
}

// New creates a new Scheduler.
func New(ctx context.Context, runner Runner, interval time.Duration, log zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		log:       log.With().Str("component", "scheduler").Logger(),
		ctx:       ctx,
	}
}

// Start schedules the periodic job, runs it once immediately and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return errors.New("scheduler: interval must be positive")
	}

	_, err := s.scheduler.Every(s.interval).StartImmediately().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.log.Info().Msgf("scheduled pipeline every %s", s.interval)
	return nil
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}

	s.log.Info().Msg("running weather pipeline job")

	report, err := s.runner.Run(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Str("run_id", report.RunID).Msg("pipeline run failed")
		return
	}

	s.log.Info().Str("run_id", report.RunID).Msgf("completed weather pipeline job: %d loaded, %d failed",
		report.Loaded, report.LoadFailed+report.ExtractFailed)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
