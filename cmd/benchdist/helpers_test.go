package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/benchdist/internal/model"
)

// resultBrowser serves search listings for a fixed set of identifiers.
// Identifiers are matched exactly on the q parameter.
type resultBrowser struct {
	pages    map[string][][]model.ScorePair
	requests atomic.Int64
}

func (b *resultBrowser) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.requests.Add(1)

	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		http.Error(w, "bad page", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pages, ok := b.pages[q.Get("q")]
	if !ok || page > len(pages) {
		_, _ = w.Write([]byte("<html><body><p>No results</p></body></html>"))
		return
	}
	_, _ = w.Write([]byte(renderListing(pages[page-1], len(pages))))
}

// renderListing renders one listing page with a pagination control.
func renderListing(pairs []model.ScorePair, lastPage int) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, p := range pairs {
		fmt.Fprintf(&sb, `<div class="list-col"><div class="list-col-inner"><div class="row">
<div class="col-12 col-lg-4">System</div>
<div class="col-6 col-md-3 col-lg-2">Date</div>
<div class="col-6 col-md-3 col-lg-2">Platform</div>
<div class="col-6 col-md-3 col-lg-2"><span class="list-col-text-score">%d</span></div>
<div class="col-6 col-md-3 col-lg-2"><span class="list-col-text-score">%d</span></div>
</div></div></div>`, p.SingleCore, p.MultiCore)
	}
	sb.WriteString(`<ul class="pagination"><li class="page-item"><a href="?page=1">1</a></li>`)
	fmt.Fprintf(&sb, `<li class="page-item"><a href="?page=%d">%d</a></li>`, lastPage, lastPage)
	sb.WriteString(`<li class="page-item"><a rel="next">Next</a></li></ul>`)
	sb.WriteString("</body></html>")
	return sb.String()
}

// testEnv holds an isolated database directory, config file and remote.
type testEnv struct {
	dbDir      string
	configPath string
	browser    *resultBrowser
	server     *httptest.Server
}

// newTestEnv starts a result browser and writes configContent to a
// temporary config file.
func newTestEnv(t *testing.T, configContent string) *testEnv {
	t.Helper()

	browser := &resultBrowser{pages: map[string][][]model.ScorePair{
		"Intel i7 3770": {
			{{SingleCore: 100, MultiCore: 400}, {SingleCore: 110, MultiCore: 420}, {SingleCore: 105, MultiCore: 410}},
		},
		"AMD Ryzen 5 3600": {
			{{SingleCore: 250, MultiCore: 1400}, {SingleCore: 260, MultiCore: 1450}},
			{{SingleCore: 255, MultiCore: 1425}},
		},
	}}
	server := httptest.NewServer(browser)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".benchdist")
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &testEnv{
		dbDir:      filepath.Join(dir, "data"),
		configPath: configPath,
		browser:    browser,
		server:     server,
	}
}

// run executes the root command with the environment's config and database.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--config", e.configPath, "--db-dir", e.dbDir))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// compareArgs prefixes identifiers with the flags pointing compare at the
// test server.
func (e *testEnv) compareArgs(extra ...string) []string {
	return append([]string{"compare", "--base-url", e.server.URL + "/v5/cpu/search", "--rate", "0", "--retries", "0"}, extra...)
}
