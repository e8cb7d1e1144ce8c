package crawler

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/nao1215/benchdist/internal/model"
)

// Default selectors for the Geekbench 5 result listing.
const (
	// DefaultSingleCoreSelector matches the single-core score of each result row.
	DefaultSingleCoreSelector = "div.list-col-inner > div.row > div.col-6:nth-child(4) > span.list-col-text-score"

	// DefaultMultiCoreSelector matches the multi-core score of each result row.
	DefaultMultiCoreSelector = "div.list-col-inner > div.row > div.col-6:nth-child(5) > span.list-col-text-score"

	// DefaultPaginationSelector matches the link to the last page, which is the
	// second to last item of the pagination control ("next" is the last one).
	DefaultPaginationSelector = ".page-item:nth-last-child(2) > a"
)

// Field names used in ExtractionParseError.
const (
	fieldSingleCore = "single-core"
	fieldMultiCore  = "multi-core"
)

// Extractor reads score figures and pagination from listing markup.
//
// Design decision: selectors are data, not code. When the remote markup
// changes the fix is a configuration edit rather than a release.
type Extractor struct {
	singleCoreSelector string
	multiCoreSelector  string
	paginationSelector string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithSingleCoreSelector overrides the single-core score selector.
// An empty selector keeps the default.
func WithSingleCoreSelector(sel string) ExtractorOption {
	return func(e *Extractor) {
		if sel != "" {
			e.singleCoreSelector = sel
		}
	}
}

// WithMultiCoreSelector overrides the multi-core score selector.
// An empty selector keeps the default.
func WithMultiCoreSelector(sel string) ExtractorOption {
	return func(e *Extractor) {
		if sel != "" {
			e.multiCoreSelector = sel
		}
	}
}

// WithPaginationSelector overrides the pagination control selector.
// An empty selector keeps the default.
func WithPaginationSelector(sel string) ExtractorOption {
	return func(e *Extractor) {
		if sel != "" {
			e.paginationSelector = sel
		}
	}
}

// NewExtractor creates an Extractor. Every selector is compiled once here so
// a typo in the configuration file fails before any request is made.
func NewExtractor(opts ...ExtractorOption) (*Extractor, error) {
	e := &Extractor{
		singleCoreSelector: DefaultSingleCoreSelector,
		multiCoreSelector:  DefaultMultiCoreSelector,
		paginationSelector: DefaultPaginationSelector,
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, sel := range []string{e.singleCoreSelector, e.multiCoreSelector, e.paginationSelector} {
		if _, err := cascadia.Compile(sel); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSelector, sel, err)
		}
	}
	return e, nil
}

// document parses content into a queryable document.
func (e *Extractor) document(content []byte) (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// PageCount reads the pagination control.
//
// found is false when the page has no pagination control, which is how the
// listing reports "no results". When found, the count is at least 1.
func (e *Extractor) PageCount(content []byte) (count int, found bool, err error) {
	doc, err := e.document(content)
	if err != nil {
		return 0, false, err
	}

	sel := doc.Find(e.paginationSelector).First()
	if sel.Length() == 0 {
		return 0, false, nil
	}

	text := strings.TrimSpace(sel.Text())
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %q", ErrPaginationParse, text)
	}
	return max(1, n), true, nil
}

// Scores returns the score pairs of one page in document order.
// The i-th single-core figure is paired with the i-th multi-core figure.
// A page without result rows yields an empty, non-nil slice.
func (e *Extractor) Scores(content []byte) ([]model.ScorePair, error) {
	doc, err := e.document(content)
	if err != nil {
		return nil, err
	}

	singles, err := parseFigures(doc.Find(e.singleCoreSelector), fieldSingleCore)
	if err != nil {
		return nil, err
	}
	multis, err := parseFigures(doc.Find(e.multiCoreSelector), fieldMultiCore)
	if err != nil {
		return nil, err
	}

	if len(singles) != len(multis) {
		return nil, &ExtractionMismatchError{SingleCore: len(singles), MultiCore: len(multis)}
	}

	pairs := make([]model.ScorePair, len(singles))
	for i := range singles {
		pairs[i] = model.ScorePair{SingleCore: singles[i], MultiCore: multis[i]}
	}
	return pairs, nil
}

// parseFigures parses the trimmed text of every node in sel.
func parseFigures(sel *goquery.Selection, field string) ([]uint32, error) {
	figures := make([]uint32, 0, sel.Length())
	var parseErr error

	sel.EachWithBreak(func(i int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		v, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			parseErr = &ExtractionParseError{Field: field, Index: i, Value: text, Err: err}
			return false
		}
		figures = append(figures, uint32(v))
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return figures, nil
}
