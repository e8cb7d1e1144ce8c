package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/benchdist/internal/config"
	"github.com/nao1215/benchdist/internal/model"
	"github.com/nao1215/benchdist/internal/pipeline"
)

// jsonSeries decodes the series of a JSON report.
func jsonSeries(t *testing.T, out string) []*model.Series {
	t.Helper()

	var doc struct {
		Series []*model.Series `json:"series"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON report: %v\n%s", err, out)
	}
	return doc.Series
}

// TestNewCompareCmd tests the compare command creation.
func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "compare <identifier>..." {
			t.Errorf("unexpected use %q", cmd.Use)
		}
	})

	t.Run("flag defaults match config defaults", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			want string
		}{
			{"base-url", config.DefaultBaseURL},
			{"timeout", config.DefaultTimeout.String()},
			{"retries", "2"},
			{"rate", "2"},
			{"concurrency", "4"},
			{"fetch-concurrency", "4"},
			{"bins", "20"},
			{"json", "false"},
			{"markdown", "false"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.DefValue != tt.want {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.want, flag.DefValue)
			}
		}
	})

	t.Run("requires an identifier", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, nil); err == nil {
			t.Error("expected error without identifiers")
		}
	})
}

// TestCompare runs the compare command end to end against a fake result
// browser and a temporary cache.
func TestCompare(t *testing.T) {
	t.Parallel()

	t.Run("downloads, stores and reports every identifier", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "aliases:\n  \"amd ryzen 5 3600\": \"Zen 2\"\n")
		stdout, _, err := env.run(t, env.compareArgs("--json", "Intel i7 3770", "AMD Ryzen 5 3600")...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		series := jsonSeries(t, stdout)
		want := []*model.Series{
			{
				Name: "Intel i7 3770", Identifier: "Intel i7 3770", Key: "intel_i7_3770",
				Pairs: []model.ScorePair{{SingleCore: 100, MultiCore: 400}, {SingleCore: 110, MultiCore: 420}, {SingleCore: 105, MultiCore: 410}},
			},
			{
				Name: "Zen 2", Identifier: "AMD Ryzen 5 3600", Key: "amd_ryzen_5_3600",
				Pairs: []model.ScorePair{{SingleCore: 250, MultiCore: 1400}, {SingleCore: 260, MultiCore: 1450}, {SingleCore: 255, MultiCore: 1425}},
			},
		}
		if diff := cmp.Diff(want, series); diff != "" {
			t.Errorf("series mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("second run is served from the cache", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "aliases: {}\n")
		if _, _, err := env.run(t, env.compareArgs("Intel i7 3770")...); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		before := env.browser.requests.Load()

		stdout, _, err := env.run(t, env.compareArgs("--json", "INTEL i7-3770")...)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if after := env.browser.requests.Load(); after != before {
			t.Errorf("expected no requests on cache hit, got %d more", after-before)
		}
		if series := jsonSeries(t, stdout); len(series) != 1 || series[0].Len() != 3 {
			t.Errorf("unexpected series %+v", series)
		}
	})

	t.Run("missing identifier aborts before downloading", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "aliases: {}\n")
		_, _, err := env.run(t, env.compareArgs("AMD Ryzen 5 3600", "Nonexistent CPU", "Imaginary CPU")...)

		var nf *pipeline.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
		if diff := cmp.Diff([]string{"Nonexistent CPU", "Imaginary CPU"}, nf.Identifiers); diff != "" {
			t.Errorf("identifiers mismatch (-want +got):\n%s", diff)
		}
		// One probe per identifier, no page 2 of the existing one.
		if n := env.browser.requests.Load(); n != 3 {
			t.Errorf("expected 3 probe requests, got %d", n)
		}
	})

	t.Run("writes markdown report to file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "aliases: {}\n")
		reportPath := filepath.Join(t.TempDir(), "reports", "cpu.md")
		stdout, _, err := env.run(t, env.compareArgs("--markdown", "-o", reportPath, "--bins", "5", "Intel i7 3770")...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "" {
			t.Errorf("expected nothing on stdout, got %q", stdout)
		}

		content, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(content), "# Benchmark Score Distributions") {
			t.Errorf("unexpected report:\n%s", content)
		}
	})

	t.Run("text report by default", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "aliases: {}\n")
		stdout, _, err := env.run(t, env.compareArgs("Intel i7 3770")...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "single-core") || !strings.Contains(stdout, "Intel i7 3770") {
			t.Errorf("unexpected output:\n%s", stdout)
		}
	})

	t.Run("verbose logs mask the configured cookie", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "source:\n  cookie: \"session=supersecret\"\n")
		_, stderr, err := env.run(t, env.compareArgs("-v", "Intel i7 3770")...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "request headers") {
			t.Errorf("expected debug logs, got:\n%s", stderr)
		}
		if strings.Contains(stderr, "supersecret") {
			t.Errorf("cookie leaked into logs:\n%s", stderr)
		}
	})
}

// TestCompareConfigErrors tests configuration failures reported before any
// request is made.
func TestCompareConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"conflicting formats", []string{"--json", "--markdown", "cpu"}, config.ErrConflictingReportFormats},
		{"negative retries", []string{"--retries", "-1", "cpu"}, config.ErrInvalidRetries},
		{"zero bins", []string{"--bins", "0", "cpu"}, config.ErrInvalidBins},
		{"blank identifier", []string{"  "}, config.ErrEmptyIdentifier},
		{"invalid base URL", []string{"--base-url", "not-a-url", "cpu"}, config.ErrInvalidBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, "aliases: {}\n")
			_, _, err := env.run(t, append([]string{"compare"}, tt.args...)...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if n := env.browser.requests.Load(); n != 0 {
				t.Errorf("expected no requests, got %d", n)
			}
		})
	}

	t.Run("explicit config file must exist", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"compare", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "cpu"})
		err := cmd.Execute()
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

// TestBuildConfig tests flag and file precedence.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, `source:
  baseURL: "https://mirror.example.com/search"
  userAgent: "from-file"
`)

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		compare, _, err := cmd.Find([]string{"compare"})
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if err := compare.ParseFlags([]string{"--config", env.configPath}); err != nil {
			t.Fatalf("parse failed: %v", err)
		}

		cfg, err := buildConfig(compare, []string{"cpu"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.BaseURL != "https://mirror.example.com/search" || cfg.UserAgent != "from-file" {
			t.Errorf("file not applied: %q %q", cfg.BaseURL, cfg.UserAgent)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		t.Parallel()

		cmd := NewRootCmd()
		compare, _, err := cmd.Find([]string{"compare"})
		if err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if err := compare.ParseFlags([]string{
			"--config", env.configPath,
			"--db-dir", "/tmp/benchdist-test",
			"--user-agent", "from-flag",
			"--rate", "0.5",
			"-b", "2",
			"--verbose",
		}); err != nil {
			t.Fatalf("parse failed: %v", err)
		}

		cfg, err := buildConfig(compare, []string{"cpu"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.UserAgent != "from-flag" {
			t.Errorf("expected flag user agent, got %q", cfg.UserAgent)
		}
		if cfg.BaseURL != "https://mirror.example.com/search" {
			t.Errorf("expected file base URL, got %q", cfg.BaseURL)
		}
		if cfg.RequestsPerSecond != 0.5 || cfg.Concurrency != 2 || !cfg.Verbose {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if cfg.DBDir != "/tmp/benchdist-test" {
			t.Errorf("expected db dir from flag, got %q", cfg.DBDir)
		}
	})
}

// failingCloser reports an error on Close.
type failingCloser struct {
	err error
}

func (c *failingCloser) Close() error {
	return c.err
}

// TestCloseReport tests that close errors on the report file are surfaced.
func TestCloseReport(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("no space left on device")

	t.Run("close error is returned after a successful write", func(t *testing.T) {
		t.Parallel()

		var err error
		closeReport(&failingCloser{err: diskFull}, &err)
		if !errors.Is(err, diskFull) {
			t.Errorf("expected close error, got %v", err)
		}
	})

	t.Run("write error wins over close error", func(t *testing.T) {
		t.Parallel()

		writeErr := errors.New("write failed")
		err := writeErr
		closeReport(&failingCloser{err: diskFull}, &err)
		if !errors.Is(err, writeErr) || errors.Is(err, diskFull) {
			t.Errorf("expected the write error, got %v", err)
		}
	})

	t.Run("clean close leaves no error", func(t *testing.T) {
		t.Parallel()

		var err error
		closeReport(&failingCloser{}, &err)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
