package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-pipeline/internal/pipeline"
)

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(context.Context) (pipeline.Report, error) {
	r.runs.Add(1)
	return pipeline.Report{RunID: "test"}, nil
}

func TestStartRunsImmediately(t *testing.T) {
	runner := &countingRunner{}
	s := New(context.Background(), runner, time.Hour, zerolog.Nop())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestStartRejectsNonPositiveInterval(t *testing.T) {
	s := New(context.Background(), &countingRunner{}, 0, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestCancelledContextSkipsRun(t *testing.T) {
	runner := &countingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(ctx, runner, time.Hour, zerolog.Nop())
	s.runOnce()

	assert.Zero(t, runner.runs.Load())
}
