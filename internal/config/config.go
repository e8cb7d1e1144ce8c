package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "benchdist"

	// DefaultBaseURL is the Geekbench 5 CPU search endpoint.
	DefaultBaseURL = "https://browser.geekbench.com/v5/cpu/search"

	// DefaultTimeout applies to each HTTP request. Result listings are small,
	// so 30 seconds only trips on a stalled connection.
	DefaultTimeout = 30 * time.Second

	// DefaultRetries is how many times a failed request is retried.
	// Only transport errors, 429 and 5xx responses are retried.
	DefaultRetries = 2

	// DefaultRequestsPerSecond paces requests to the remote site.
	// Listings of popular processors span hundreds of pages, so without a
	// limit a single run could hammer the site.
	DefaultRequestsPerSecond = 2.0

	// DefaultConcurrency is the number of identifiers processed at once.
	DefaultConcurrency = 4

	// DefaultFetchConcurrency is the number of pages of one identifier
	// downloaded at once.
	DefaultFetchConcurrency = 4

	// DefaultBins is the number of histogram bins in reports.
	DefaultBins = 20

	// DefaultUserAgent identifies benchdist in HTTP requests.
	DefaultUserAgent = "benchdist/1.0 (+https://github.com/nao1215/benchdist)"
)

// Config holds all configuration options for benchdist.
// It is populated from CLI flags and the configuration file and passed
// through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable.
type Config struct {
	// Identifiers are the hardware identifiers to compare, in output order.
	Identifiers []string

	// BaseURL is the search endpoint of the remote listing.
	BaseURL string

	// Timeout is the timeout of each HTTP request.
	Timeout time.Duration

	// Retries is the number of retries of a failed request.
	Retries int

	// RequestsPerSecond limits the request rate. 0 disables the limit.
	RequestsPerSecond float64

	// Concurrency is the number of identifiers processed at once.
	Concurrency int

	// FetchConcurrency is the number of pages downloaded at once per identifier.
	FetchConcurrency int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// DBDir is the directory holding the score cache.
	// Defaults to the XDG data directory (~/.local/share/benchdist on Linux).
	DBDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, .benchdist is searched in the current and home directories.
	ConfigFilePath string

	// File holds the settings loaded from the configuration file.
	File *File

	// JSONReport selects JSON output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// Bins is the number of histogram bins.
	Bins int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches logs to JSON lines.
	LogJSON bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeout, rate, bins).
func NewConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           DefaultTimeout,
		Retries:           DefaultRetries,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Concurrency:       DefaultConcurrency,
		FetchConcurrency:  DefaultFetchConcurrency,
		UserAgent:         DefaultUserAgent,
		DBDir:             XDGDataDir(),
		Bins:              DefaultBins,
		File:              NewFile(),
	}
}

// ApplyFile copies the settings of f that are set over c.
// CLI flags are applied after this, so they win over the file.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f
	if f.Source.BaseURL != "" {
		c.BaseURL = f.Source.BaseURL
	}
	if f.Source.UserAgent != "" {
		c.UserAgent = f.Source.UserAgent
	}
}

// XDGDataDir returns the XDG data directory for benchdist.
// On Linux: ~/.local/share/benchdist
// On macOS: ~/Library/Application Support/benchdist
// On Windows: %LOCALAPPDATA%\benchdist
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for benchdist.
// On Linux: ~/.config/benchdist
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast, before the cache is opened or any request made.
func (c *Config) Validate() error {
	if len(c.Identifiers) == 0 {
		return ErrNoIdentifier
	}
	for _, id := range c.Identifiers {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyIdentifier
		}
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Retries < 0 {
		return ErrInvalidRetries
	}

	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}

	if c.Concurrency <= 0 || c.FetchConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Bins <= 0 {
		return ErrInvalidBins
	}

	return nil
}
