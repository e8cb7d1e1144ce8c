package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/benchdist/internal/database"
	"github.com/nao1215/benchdist/internal/model"
)

// Phase names used in log messages.
const (
	phaseDiscovery   = "discovery"
	phaseAcquisition = "acquisition"
)

// Acquirer turns a list of identifiers into score series, using the cache
// where it can and the remote source where it must.
//
// A run has two phases:
//
//  1. Discovery: every identifier is checked against the cache and, on a
//     miss, probed remotely. All failures are collected. If any identifier
//     does not exist remotely the run stops with a *NotFoundError naming all
//     of them, before anything is downloaded or written.
//  2. Acquisition: remaining identifiers are fetched, extracted, persisted
//     and loaded. The first failure cancels the others.
type Acquirer struct {
	store     Store
	prober    Prober
	fetcher   PageFetcher
	extractor ScoreExtractor

	// concurrency bounds how many identifiers are processed at once.
	concurrency int

	// aliases maps normalized keys to display names.
	aliases map[string]string

	logger *slog.Logger
}

// AcquirerOption configures an Acquirer.
type AcquirerOption func(*Acquirer)

// WithAcquirerLogger sets the logger used by the acquirer and its steps.
func WithAcquirerLogger(logger *slog.Logger) AcquirerOption {
	return func(a *Acquirer) {
		a.logger = logger
	}
}

// WithTargetConcurrency sets how many identifiers are processed at once.
func WithTargetConcurrency(n int) AcquirerOption {
	return func(a *Acquirer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithAliases sets display names by identifier. Aliases are matched on the
// normalized key, so "Intel i7-3770" also names "intel i7 3770".
func WithAliases(aliases map[string]string) AcquirerOption {
	return func(a *Acquirer) {
		for identifier, name := range aliases {
			a.aliases[database.NormalizeKey(identifier)] = name
		}
	}
}

// NewAcquirer creates an Acquirer.
func NewAcquirer(store Store, prober Prober, fetcher PageFetcher, extractor ScoreExtractor, opts ...AcquirerOption) *Acquirer {
	a := &Acquirer{
		store:       store,
		prober:      prober,
		fetcher:     fetcher,
		extractor:   extractor,
		concurrency: 4,
		aliases:     make(map[string]string),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// discoveryPipeline checks the cache and probes on a miss.
func (a *Acquirer) discoveryPipeline() *Pipeline {
	p := New(WithLogger(a.logger))
	p.AddSteps(
		NewCacheCheckStep(a.store, a.logger),
		NewProbeStep(a.prober),
	)
	return p
}

// acquisitionPipeline downloads, parses and stores a probed target.
func (a *Acquirer) acquisitionPipeline() *Pipeline {
	p := New(WithLogger(a.logger))
	p.AddSteps(
		NewFetchStep(a.fetcher, a.logger),
		NewExtractStep(a.extractor, a.logger),
		NewPersistStep(a.store, a.logger),
		NewLoadStep(a.store),
	)
	return p
}

// Acquire returns one series per identifier, in input order.
// Duplicate identifiers each get their own series.
func (a *Acquirer) Acquire(ctx context.Context, identifiers []string) ([]*model.Series, error) {
	targets := make([]*model.Target, len(identifiers))
	for i, id := range identifiers {
		targets[i] = model.NewTarget(id, database.NormalizeKey(id))
	}

	discovery := NewBatchProcessor(a.discoveryPipeline,
		WithConcurrency(a.concurrency),
		WithBatchLogger(a.logger),
		WithPhase(phaseDiscovery),
	)
	if err := discovery.ProcessBatch(ctx, targets); err != nil {
		return nil, err
	}

	if err := notFound(targets); err != nil {
		return nil, err
	}

	pending := make([]*model.Target, 0, len(targets))
	for _, t := range targets {
		if t.State != model.StateLoaded {
			pending = append(pending, t)
		}
	}

	if len(pending) > 0 {
		acquisition := NewBatchProcessor(a.acquisitionPipeline,
			WithConcurrency(a.concurrency),
			WithBatchLogger(a.logger),
			WithPhase(phaseAcquisition),
			WithFailFast(true),
		)
		if err := acquisition.ProcessBatch(ctx, pending); err != nil {
			return nil, err
		}
		if err := a.shareKeys(ctx, pending); err != nil {
			return nil, err
		}
	}

	series := make([]*model.Series, len(targets))
	for i, t := range targets {
		s := t.Series()
		if name, ok := a.aliases[t.Key]; ok && name != "" {
			s.Name = name
		}
		series[i] = s
	}
	return series, nil
}

// shareKeys re-reads the cache for targets that did not write their own
// pairs. Targets run concurrently, so an empty target can load before a
// sibling with the same key persists.
func (a *Acquirer) shareKeys(ctx context.Context, targets []*model.Target) error {
	for _, t := range targets {
		if err := readShared(ctx, a.store, t); err != nil {
			return &TargetError{Identifier: t.Identifier, Step: "load", Err: err}
		}
	}
	return nil
}

// notFound returns a *NotFoundError naming every target the probe found
// absent, or nil.
func notFound(targets []*model.Target) error {
	var absent []string
	for _, t := range targets {
		if t.State == model.StateNotFound {
			absent = append(absent, t.Identifier)
		}
	}
	if len(absent) == 0 {
		return nil
	}
	return &NotFoundError{Identifiers: absent}
}
