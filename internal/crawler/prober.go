package crawler

import (
	"context"
	"log/slog"
)

// ProbeResult is the outcome of probing one identifier.
type ProbeResult struct {
	// Exists is true when the listing has at least one result page.
	Exists bool

	// PageCount is the number of result pages; 0 when Exists is false.
	PageCount int

	// FirstPage is the body of page 1. It is kept so the fetch phase does
	// not download it a second time.
	FirstPage []byte
}

// Prober decides whether an identifier has remote results.
type Prober struct {
	fetcher   *Fetcher
	extractor *Extractor
	logger    *slog.Logger
}

// NewProber creates a Prober.
func NewProber(fetcher *Fetcher, extractor *Extractor) *Prober {
	return &Prober{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    fetcher.logger,
	}
}

// Probe fetches the first result page of identifier and reads its
// pagination control. Every failure is a *ProbeError.
func (p *Prober) Probe(ctx context.Context, identifier string) (*ProbeResult, error) {
	body, err := p.fetcher.FetchPage(ctx, p.fetcher.SearchURL(identifier, 1))
	if err != nil {
		return nil, &ProbeError{Identifier: identifier, Err: err}
	}

	count, found, err := p.extractor.PageCount(body)
	if err != nil {
		return nil, &ProbeError{Identifier: identifier, Err: err}
	}
	if !found {
		p.logger.Info("identifier has no results", "identifier", identifier)
		return &ProbeResult{Exists: false, PageCount: 0}, nil
	}

	p.logger.Info("identifier found",
		"identifier", identifier,
		"pages", count,
	)
	return &ProbeResult{Exists: true, PageCount: count, FirstPage: body}, nil
}
