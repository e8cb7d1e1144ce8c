package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the Geekbench 5 CPU search endpoint.
const DefaultBaseURL = "https://browser.geekbench.com/v5/cpu/search"

// DefaultUserAgent is sent when no User-Agent is configured.
const DefaultUserAgent = "benchdist/1.0 (+https://github.com/nao1215/benchdist)"

// Fetcher downloads listing pages.
// A Fetcher is safe for concurrent use; the rate limiter is shared.
type Fetcher struct {
	// client performs the HTTP requests.
	client *resty.Client

	// baseURL is the search endpoint without a query string.
	baseURL *url.URL

	// limiter paces outgoing requests, retries included.
	limiter *rate.Limiter

	// concurrency bounds the pages in flight in FetchPages.
	concurrency int

	timeout   time.Duration
	retries   int
	retryWait time.Duration
	userAgent string
	headers   map[string]string
	rps       float64
	logger    *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRetries sets how many times a failed request is retried.
// Transport errors, 429 and 5xx responses are retried.
func WithRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		f.retries = n
	}
}

// WithRetryWait sets the initial back-off between retries.
func WithRetryWait(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.retryWait = d
	}
}

// WithRequestsPerSecond sets the request rate. Zero or less disables the limit.
func WithRequestsPerSecond(rps float64) FetcherOption {
	return func(f *Fetcher) {
		f.rps = rps
	}
}

// WithConcurrency sets how many pages FetchPages downloads at once.
func WithConcurrency(n int) FetcherOption {
	return func(f *Fetcher) {
		f.concurrency = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders adds request headers sent with every request.
func WithHeaders(headers map[string]string) FetcherOption {
	return func(f *Fetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithLogger sets the logger for progress messages.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher for the listing endpoint at baseURL.
func NewFetcher(baseURL string, opts ...FetcherOption) (*Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q must be an absolute http(s) URL", ErrInvalidBaseURL, baseURL)
	}
	u.RawQuery = ""
	u.Fragment = ""

	f := &Fetcher{
		baseURL:     u,
		concurrency: 4,
		timeout:     30 * time.Second,
		retries:     2,
		retryWait:   500 * time.Millisecond,
		userAgent:   DefaultUserAgent,
		headers:     make(map[string]string),
		rps:         2,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.concurrency < 1 {
		f.concurrency = 1
	}

	limit := rate.Inf
	burst := 1
	if f.rps > 0 {
		limit = rate.Limit(f.rps)
		burst = max(1, int(f.rps))
	}
	f.limiter = rate.NewLimiter(limit, burst)

	f.client = resty.New().
		SetTimeout(f.timeout).
		SetRetryCount(f.retries).
		SetRetryWaitTime(f.retryWait).
		SetRetryMaxWaitTime(10*f.retryWait).
		SetHeader("User-Agent", f.userAgent).
		SetHeaders(f.headers).
		SetLogger(&restyLogger{logger: f.logger}).
		AddRetryCondition(shouldRetry).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return f.limiter.Wait(req.Context())
		})

	return f, nil
}

// restyLogger routes resty's own diagnostics to slog at Debug level so that
// a retried request does not print to stderr unless --verbose is set.
type restyLogger struct {
	logger *slog.Logger
}

func (l *restyLogger) Errorf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "source", "resty", "severity", "error")
}

func (l *restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "source", "resty", "severity", "warn")
}

func (l *restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(fmt.Sprintf(format, v...), "source", "resty")
}

// shouldRetry retries transport errors, 429 and 5xx responses.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// SearchURL returns the listing URL of one page of results for identifier.
// Pages are numbered from 1.
func (f *Fetcher) SearchURL(identifier string, page int) string {
	u := *f.baseURL
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("q", identifier)
	q.Set("utf8", "✓")
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage downloads one page and returns its body.
// Any non-2xx final status is a *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	resp, err := f.client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode(), Err: ErrUnexpectedStatus}
	}
	return resp.Body(), nil
}

// FetchPages downloads every URL with bounded concurrency.
// The result is in the same order as urls. The first failure cancels the
// remaining downloads and is returned.
func (f *Fetcher) FetchPages(ctx context.Context, urls []string) ([][]byte, error) {
	pages := make([][]byte, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			f.logger.Debug("downloading page",
				"page", i+1,
				"total", len(urls),
			)
			body, err := f.FetchPage(gctx, u)
			if err != nil {
				return err
			}
			pages[i] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}
