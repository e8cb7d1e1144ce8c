package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/benchdist/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one moving the target further along
// its state machine.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry their collaborators (store, fetcher, extractor)
// 2. It provides a Name() method for logging and error messages
type Step interface {
	// Do executes the pipeline step on target.
	// A returned error aborts the pipeline for this target.
	Do(ctx context.Context, target *model.Target) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps for one target.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the pipeline steps in sequence on target.
//
// Execution stops without error as soon as the target reaches a terminal
// state: a cache hit is Loaded after the cache check and an unknown
// identifier is NotFound after probing, and neither needs the later steps.
//
// A failing step stops the pipeline and is returned as a *TargetError.
func (p *Pipeline) Execute(ctx context.Context, target *model.Target) error {
	for _, step := range p.steps {
		if target.State.Terminal() {
			p.logger.Debug("target settled, skipping remaining steps",
				"identifier", target.Identifier,
				"state", target.State,
			)
			return nil
		}

		// Check for cancellation before starting each step
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"identifier", target.Identifier,
				"reason", ctx.Err(),
			)
			return &TargetError{Identifier: target.Identifier, Step: step.Name(), Err: ctx.Err()}
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"identifier", target.Identifier,
		)

		if err := step.Do(ctx, target); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"identifier", target.Identifier,
				"error", err,
			)
			return &TargetError{Identifier: target.Identifier, Step: step.Name(), Err: err}
		}
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
