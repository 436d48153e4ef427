// Package jobs runs periodic background work such as index warming.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Job is one unit of periodic work
type Job interface {
	Run(ctx context.Context) error
}

// Worker runs a Job on a fixed interval until stopped. A run may take at most
// one interval; runs never overlap.
type Worker struct {
	name     string
	job      Job
	interval time.Duration
	logger   zerolog.Logger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a Worker that runs job every interval
func NewWorker(name string, job Job, interval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		name:     name,
		job:      job,
		interval: interval,
		logger:   logger.With().Str("worker", name).Logger(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks, running the job on every tick, until ctx is done or Stop is called
func (w *Worker) Start(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("worker: started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker: context done")
			return
		case <-w.stop:
			w.logger.Info().Msg("worker: stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.interval)
	defer cancel()

	start := time.Now()
	if err := w.job.Run(runCtx); err != nil {
		w.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("worker: run failed")
		return
	}
	w.logger.Debug().Dur("duration", time.Since(start)).Msg("worker: run finished")
}

// Stop ends the loop and waits for an in-flight run. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	<-w.done
}
