package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional: these tests fail if they change.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default BaseURL is the Geekbench 5 CPU search", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://browser.geekbench.com/v5/cpu/search" {
			t.Errorf("unexpected BaseURL %q", cfg.BaseURL)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default Retries is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.Retries != 2 {
			t.Errorf("expected Retries to be 2, got %d", cfg.Retries)
		}
	})

	t.Run("default RequestsPerSecond is 2", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestsPerSecond != 2 {
			t.Errorf("expected RequestsPerSecond to be 2, got %v", cfg.RequestsPerSecond)
		}
	})

	t.Run("default concurrency limits are 4", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 4 || cfg.FetchConcurrency != 4 {
			t.Errorf("expected 4/4, got %d/%d", cfg.Concurrency, cfg.FetchConcurrency)
		}
	})

	t.Run("default Bins is 20", func(t *testing.T) {
		t.Parallel()
		if cfg.Bins != 20 {
			t.Errorf("expected Bins to be 20, got %d", cfg.Bins)
		}
	})

	t.Run("default DBDir is the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected DBDir %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("default File is empty but allocated", func(t *testing.T) {
		t.Parallel()
		if cfg.File == nil || cfg.File.Aliases == nil || cfg.File.Source.Headers == nil {
			t.Error("expected allocated File")
		}
	})

	t.Run("report format defaults to text", func(t *testing.T) {
		t.Parallel()
		if cfg.JSONReport || cfg.MarkdownReport {
			t.Error("expected text report by default")
		}
	})
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Identifiers = []string{"Intel i7 3770"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"valid configuration", func(_ *Config) {}, nil},
		{"no identifiers", func(c *Config) { c.Identifiers = nil }, ErrNoIdentifier},
		{"blank identifier", func(c *Config) { c.Identifiers = []string{"cpu", "  "} }, ErrEmptyIdentifier},
		{"relative base URL", func(c *Config) { c.BaseURL = "/v5/cpu/search" }, ErrInvalidBaseURL},
		{"ftp base URL", func(c *Config) { c.BaseURL = "ftp://example.com" }, ErrInvalidBaseURL},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative retries", func(c *Config) { c.Retries = -1 }, ErrInvalidRetries},
		{"zero retries allowed", func(c *Config) { c.Retries = 0 }, nil},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, ErrInvalidRate},
		{"unlimited rate allowed", func(c *Config) { c.RequestsPerSecond = 0 }, nil},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"zero fetch concurrency", func(c *Config) { c.FetchConcurrency = 0 }, ErrInvalidConcurrency},
		{"json and markdown", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
		{"zero bins", func(c *Config) { c.Bins = 0 }, ErrInvalidBins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestApplyFile tests merging the configuration file into Config.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("file values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := NewFile()
		f.Source.BaseURL = "https://mirror.example.com/search"
		f.Source.UserAgent = "custom-agent"
		f.Aliases["Intel i7 3770"] = "Ivy Bridge"

		cfg.ApplyFile(f)

		if cfg.BaseURL != "https://mirror.example.com/search" {
			t.Errorf("expected file base URL, got %q", cfg.BaseURL)
		}
		if cfg.UserAgent != "custom-agent" {
			t.Errorf("expected file user agent, got %q", cfg.UserAgent)
		}
		if cfg.File.Aliases["Intel i7 3770"] != "Ivy Bridge" {
			t.Error("expected aliases to be kept")
		}
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(NewFile())

		if cfg.BaseURL != DefaultBaseURL || cfg.UserAgent != DefaultUserAgent {
			t.Errorf("defaults changed: %q %q", cfg.BaseURL, cfg.UserAgent)
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)

		if cfg.File == nil {
			t.Error("File should stay allocated")
		}
	})
}

// TestRequestHeaders tests header assembly from the configuration file.
func TestRequestHeaders(t *testing.T) {
	t.Parallel()

	f := NewFile()
	f.Source.Headers["Accept-Language"] = "en"
	f.Source.Cookie = "session=abc"

	want := map[string]string{"Accept-Language": "en", "Cookie": "session=abc"}
	if diff := cmp.Diff(want, f.RequestHeaders()); diff != "" {
		t.Errorf("headers mismatch (-want +got):\n%s", diff)
	}
	if _, ok := f.Source.Headers["Cookie"]; ok {
		t.Error("RequestHeaders must not modify the source headers")
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.benchdist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".benchdist")
		content := `source:
  baseURL: "https://browser.geekbench.com/v6/cpu/search"
  userAgent: "benchdist-ci"
  cookie: "session=xyz"
  headers:
    Accept-Language: "en-US"
  selectors:
    singleCore: "span.single"
    pagination: "li.last > a"
aliases:
  "Intel i7 3770": "Ivy Bridge"
  "AMD Ryzen 5 3600": "Zen 2"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := &File{
			Source: SourceConfig{
				BaseURL:   "https://browser.geekbench.com/v6/cpu/search",
				UserAgent: "benchdist-ci",
				Cookie:    "session=xyz",
				Headers:   map[string]string{"Accept-Language": "en-US"},
				Selectors: SelectorConfig{
					SingleCore: "span.single",
					Pagination: "li.last > a",
				},
			},
			Aliases: map[string]string{
				"Intel i7 3770":    "Ivy Bridge",
				"AMD Ryzen 5 3600": "Zen 2",
			},
		}
		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".benchdist")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil maps", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".benchdist")
		if err := os.WriteFile(configPath, []byte("source:\n  userAgent: x\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Aliases == nil || cfg.Source.Headers == nil {
			t.Error("expected maps to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("aliases: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("expected data dir ending in %q, got %q", AppName, dir)
	}
	if dir := XDGConfigDir(); !strings.HasSuffix(dir, AppName) {
		t.Errorf("expected config dir ending in %q, got %q", AppName, dir)
	}
}
