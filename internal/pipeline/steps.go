package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/benchdist/internal/crawler"
	"github.com/nao1215/benchdist/internal/model"
)

// Store is the cache the steps read from and write to.
// *database.ScoreDB satisfies it.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Read(ctx context.Context, key string) ([]model.ScorePair, error)
	Persist(ctx context.Context, key, identifier string, pairs []model.ScorePair) (bool, error)
}

// Prober decides whether an identifier exists remotely.
// *crawler.Prober satisfies it.
type Prober interface {
	Probe(ctx context.Context, identifier string) (*crawler.ProbeResult, error)
}

// PageFetcher downloads listing pages.
// *crawler.Fetcher satisfies it.
type PageFetcher interface {
	SearchURL(identifier string, page int) string
	FetchPages(ctx context.Context, urls []string) ([][]byte, error)
}

// ScoreExtractor parses one listing page.
// *crawler.Extractor satisfies it.
type ScoreExtractor interface {
	Scores(content []byte) ([]model.ScorePair, error)
}

// CacheCheckStep looks the target up in the local cache.
// A hit loads the stored series and settles the target as Loaded.
type CacheCheckStep struct {
	store  Store
	logger *slog.Logger
}

// NewCacheCheckStep creates a CacheCheckStep.
func NewCacheCheckStep(store Store, logger *slog.Logger) *CacheCheckStep {
	return &CacheCheckStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *CacheCheckStep) Name() string {
	return "cache_check"
}

// Do executes the cache check.
func (s *CacheCheckStep) Do(ctx context.Context, target *model.Target) error {
	if err := target.Transition(model.StateCacheCheck); err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, target.Key)
	if err != nil {
		return err
	}
	target.Cached = model.ExistenceOf(exists)

	if !exists {
		return target.Transition(model.StateProbing)
	}

	pairs, err := s.store.Read(ctx, target.Key)
	if err != nil {
		return err
	}
	target.Pairs = pairs

	s.logger.Info("loaded from cache",
		"identifier", target.Identifier,
		"key", target.Key,
		"samples", len(pairs),
	)
	return target.Transition(model.StateLoaded)
}

// ProbeStep asks the remote source whether the target exists and how many
// result pages it has. An absent identifier settles as NotFound.
type ProbeStep struct {
	prober Prober
}

// NewProbeStep creates a ProbeStep.
func NewProbeStep(prober Prober) *ProbeStep {
	return &ProbeStep{prober: prober}
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return "probe"
}

// Do executes the probe.
func (s *ProbeStep) Do(ctx context.Context, target *model.Target) error {
	result, err := s.prober.Probe(ctx, target.Identifier)
	if err != nil {
		return err
	}

	target.Remote = model.ExistenceOf(result.Exists)
	if !result.Exists {
		return target.Transition(model.StateNotFound)
	}

	target.PageCount = result.PageCount
	target.Pages = [][]byte{result.FirstPage}
	return nil
}

// FetchStep downloads the result pages the probe did not already retrieve.
type FetchStep struct {
	fetcher PageFetcher
	logger  *slog.Logger
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher PageFetcher, logger *slog.Logger) *FetchStep {
	return &FetchStep{fetcher: fetcher, logger: logger}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do downloads pages 2..PageCount and appends them after the first page.
func (s *FetchStep) Do(ctx context.Context, target *model.Target) error {
	if err := target.Transition(model.StateFetching); err != nil {
		return err
	}

	urls := make([]string, 0, max(0, target.PageCount-1))
	for page := 2; page <= target.PageCount; page++ {
		urls = append(urls, s.fetcher.SearchURL(target.Identifier, page))
	}

	s.logger.Info("downloading pages",
		"identifier", target.Identifier,
		"pages", target.PageCount,
	)

	pages, err := s.fetcher.FetchPages(ctx, urls)
	if err != nil {
		return err
	}
	target.Pages = append(target.Pages, pages...)
	return nil
}

// ExtractStep parses every downloaded page into score pairs.
type ExtractStep struct {
	extractor ScoreExtractor
	logger    *slog.Logger
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(extractor ScoreExtractor, logger *slog.Logger) *ExtractStep {
	return &ExtractStep{extractor: extractor, logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts pairs page by page, keeping page order.
// Any page failing to parse fails the whole target.
func (s *ExtractStep) Do(ctx context.Context, target *model.Target) error {
	if err := target.Transition(model.StateExtracting); err != nil {
		return err
	}

	pairs := make([]model.ScorePair, 0)
	for i, page := range target.Pages {
		s.logger.Debug("parsing page",
			"identifier", target.Identifier,
			"page", i+1,
			"total", len(target.Pages),
		)
		extracted, err := s.extractor.Scores(page)
		if err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		pairs = append(pairs, extracted...)
	}

	target.Pairs = pairs
	// Pages are no longer needed once parsed.
	target.Pages = nil
	return nil
}

// PersistStep writes freshly extracted pairs to the cache.
type PersistStep struct {
	store  Store
	logger *slog.Logger
}

// NewPersistStep creates a PersistStep.
func NewPersistStep(store Store, logger *slog.Logger) *PersistStep {
	return &PersistStep{store: store, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do persists the target's pairs.
//
// An empty extraction writes nothing, so the identifier is probed again on
// the next run instead of being cached as empty forever.
func (s *PersistStep) Do(ctx context.Context, target *model.Target) error {
	if err := target.Transition(model.StatePersisting); err != nil {
		return err
	}

	if len(target.Pairs) == 0 {
		s.logger.Warn("no scores extracted, nothing cached",
			"identifier", target.Identifier,
			"pages", target.PageCount,
		)
		return nil
	}

	written, err := s.store.Persist(ctx, target.Key, target.Identifier, target.Pairs)
	if err != nil {
		return err
	}
	target.Persisted = written

	if written {
		s.logger.Info("cached scores",
			"identifier", target.Identifier,
			"key", target.Key,
			"samples", len(target.Pairs),
		)
	}
	return nil
}

// LoadStep settles the target as Loaded.
//
// A target that did not write its own pairs reads the cached series back
// whenever its key exists, so every identifier mapping to one key renders
// the same data. This covers both a lost key race and an empty extraction
// whose key was filled by another identifier. The extracted pairs are kept
// only when the key is absent from the cache.
type LoadStep struct {
	store Store
}

// NewLoadStep creates a LoadStep.
func NewLoadStep(store Store) *LoadStep {
	return &LoadStep{store: store}
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads the final series.
func (s *LoadStep) Do(ctx context.Context, target *model.Target) error {
	if err := readShared(ctx, s.store, target); err != nil {
		return err
	}
	return target.Transition(model.StateLoaded)
}

// readShared replaces the pairs of a target that did not persist them with
// the cached series for its key, if the key exists.
func readShared(ctx context.Context, store Store, target *model.Target) error {
	if target.Persisted {
		return nil
	}
	exists, err := store.Exists(ctx, target.Key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	pairs, err := store.Read(ctx, target.Key)
	if err != nil {
		return err
	}
	target.Pairs = pairs
	return nil
}
