package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/benchdist/internal/model"
)

// BatchProcessor runs a pipeline over many targets concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because:
// 1. It keeps the Pipeline focused on a single target
// 2. The two phases of a run need different failure strategies
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each target.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of targets processed at once.
	concurrency int

	// failFast cancels the remaining targets on the first failure.
	failFast bool

	// phase names the batch in log messages.
	phase string

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent targets.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFailFast makes the first failing target cancel the others.
// Without it every target runs to completion and all failures are joined.
func WithFailFast(failFast bool) BatchOption {
	return func(b *BatchProcessor) {
		b.failFast = failFast
	}
}

// WithPhase names the batch in log messages.
func WithPhase(phase string) BatchOption {
	return func(b *BatchProcessor) {
		b.phase = phase
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each target so that pipeline
// state never leaks between targets.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		phase:           "batch",
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline on every target.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
//
// Without fail-fast the returned error joins every target's failure, so the
// caller can report all of them at once. With fail-fast it is the first
// failure and the other targets see a cancelled context.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []*model.Target) error {
	bp.logger.Debug("starting batch",
		"phase", bp.phase,
		"targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	errs := make([]error, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			bp.logger.Info("processing identifier",
				"phase", bp.phase,
				"identifier", target.Identifier,
				"index", i+1,
				"total", len(targets),
			)

			err := bp.pipelineFactory().Execute(gctx, target)
			if err == nil {
				return nil
			}
			if bp.failFast {
				return err
			}
			errs[i] = err
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch complete",
		"phase", bp.phase,
		"targets", len(targets),
		"elapsed", time.Since(startTime),
	)

	if err != nil {
		return err
	}
	return errors.Join(errs...)
}
