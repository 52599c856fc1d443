package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/model"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeTestConfig writes a config file with a generous load time threshold
// so results do not depend on the speed of the test machine.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".shopaudit")
	content := "thresholds:\n  slowLoadTime: 1m\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func pageWithTitle(title string) string {
	return fmt.Sprintf(`<html><head><title>%s</title></head><body><h1>Welcome</h1></body></html>`, title)
}

// newShopServer serves an 80 character title on the first request and a
// 40 character title afterwards.
func newShopServer(t *testing.T) *httptest.Server {
	t.Helper()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		title := strings.Repeat("t", 40)
		if hits.Add(1) == 1 {
			title = strings.Repeat("t", 80)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pageWithTitle(title)))
	}))
	t.Cleanup(server.Close)
	return server
}

func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()

	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, s)
	}
	return v
}

// TestAuditHistoryCompareExport runs the commands against one SQLite store.
func TestAuditHistoryCompareExport(t *testing.T) {
	t.Parallel()

	server := newShopServer(t)
	cfgPath := writeTestConfig(t)
	dbDir := t.TempDir()

	stdout, _, err := execute(t, "audit", "-c", cfgPath, "--db-dir", dbDir, "-f", "json", server.URL)
	if err != nil {
		t.Fatalf("first audit failed: %v", err)
	}
	first := decodeJSON[model.AuditResult](t, stdout)
	if first.URL != server.URL {
		t.Errorf("URL = %q, want %q", first.URL, server.URL)
	}
	if first.Score < 0 || first.Score > 100 {
		t.Errorf("score out of range: %d", first.Score)
	}

	stdout, _, err = execute(t, "audit", "-c", cfgPath, "--db-dir", dbDir, server.URL)
	if err != nil {
		t.Fatalf("second audit failed: %v", err)
	}
	if !strings.Contains(stdout, "SEO AUDIT REPORT") {
		t.Errorf("expected text report, got:\n%s", stdout)
	}

	t.Run("history", func(t *testing.T) {
		stdout, _, err := execute(t, "history", "--db-dir", dbDir, "--json")
		if err != nil {
			t.Fatal(err)
		}
		audits := decodeJSON[[]model.StoredAudit](t, stdout)
		var ids []int64
		for _, a := range audits {
			ids = append(ids, a.ID)
		}
		if diff := cmp.Diff([]int64{2, 1}, ids); diff != "" {
			t.Errorf("history ids mismatch (-want +got):\n%s", diff)
		}

		stdout, _, err = execute(t, "history", "--db-dir", dbDir, "-u", server.URL, "-n", "1")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "(1 audits)") || !strings.Contains(stdout, server.URL) {
			t.Errorf("unexpected history table:\n%s", stdout)
		}

		stdout, _, err = execute(t, "history", "--db-dir", dbDir, "--urls")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "Audited pages (1)") || !strings.Contains(stdout, "  - "+server.URL) {
			t.Errorf("unexpected url list:\n%s", stdout)
		}

		if _, _, err := execute(t, "history", "--store", "memory", "--urls"); err == nil {
			t.Error("expected error listing URLs from the memory store")
		}
	})

	t.Run("compare", func(t *testing.T) {
		stdout, _, err := execute(t, "compare", "--db-dir", dbDir, "--json", server.URL)
		if err != nil {
			t.Fatal(err)
		}
		got := decodeJSON[ComparisonResult](t, stdout)
		if got.Previous.ID != 1 || got.Current.ID != 2 {
			t.Errorf("compared %d -> %d, want 1 -> 2", got.Previous.ID, got.Current.ID)
		}
		if got.Direction != directionImproved || got.ScoreDelta != got.Current.Score-got.Previous.Score {
			t.Errorf("unexpected direction %q delta %d", got.Direction, got.ScoreDelta)
		}
		if len(got.ResolvedIssues) != 1 || got.ResolvedIssues[0].ID != "title-too-long" {
			t.Errorf("resolved issues = %+v", got.ResolvedIssues)
		}
		if len(got.NewIssues) != 0 {
			t.Errorf("new issues = %+v", got.NewIssues)
		}

		stdout, _, err = execute(t, "compare", "--db-dir", dbDir, "--markdown", server.URL)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "# Audit Comparison") || !strings.Contains(stdout, "~~") {
			t.Errorf("unexpected markdown comparison:\n%s", stdout)
		}

		stdout, _, err = execute(t, "compare", "--db-dir", dbDir, server.URL)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(stdout, "IMPROVED") {
			t.Errorf("unexpected text comparison:\n%s", stdout)
		}

		if _, _, err := execute(t, "compare", "--db-dir", dbDir, "--with-id", "2", server.URL); err == nil {
			t.Error("expected error comparing the latest audit with itself")
		}
		if _, _, err := execute(t, "compare", "--db-dir", dbDir, "--with-id", "1", "https://other.example"); err == nil {
			t.Error("expected error for a URL without history")
		}
	})

	t.Run("export", func(t *testing.T) {
		outDir := t.TempDir()
		if _, _, err := execute(t, "export", "1", "--db-dir", dbDir, "-f", "md", "-o", outDir); err != nil {
			t.Fatal(err)
		}
		files, err := filepath.Glob(filepath.Join(outDir, "audit-seo-*.md"))
		if err != nil || len(files) != 1 {
			t.Fatalf("expected one exported file, got %v (%v)", files, err)
		}
		content, err := os.ReadFile(files[0])
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(content), "# SEO Audit Report") {
			t.Errorf("unexpected export:\n%s", content)
		}

		stdout, _, err := execute(t, "export", "2", "--db-dir", dbDir, "-f", "json")
		if err != nil {
			t.Fatal(err)
		}
		if got := decodeJSON[model.AuditResult](t, stdout); got.URL != server.URL {
			t.Errorf("exported URL = %q", got.URL)
		}

		if _, _, err := execute(t, "export", "99", "--db-dir", dbDir); err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
		if _, _, err := execute(t, "export", "abc", "--db-dir", dbDir); err == nil {
			t.Error("expected error for a non-numeric id")
		}
	})
}

// TestAuditCmd_Errors tests failing audits and invalid flags.
func TestAuditCmd_Errors(t *testing.T) {
	t.Parallel()

	t.Run("no targets", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, "audit", "--store", "memory")
		if !errors.Is(err, config.ErrNoTarget) {
			t.Errorf("expected ErrNoTarget, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		if _, _, err := execute(t, "audit", "--store", "memory", "-f", "pdf", "example.com"); err == nil {
			t.Error("expected error for unknown format")
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		t.Parallel()
		_, _, err := execute(t, "audit", "--store", "memory", "-c", filepath.Join(t.TempDir(), "none.yaml"), "example.com")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("failed fetch is reported and others still run", func(t *testing.T) {
		t.Parallel()

		missing := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(missing.Close)
		ok := newShopServer(t)

		stdout, stderr, err := execute(t, "audit", "-c", writeTestConfig(t), "--store", "memory",
			"-f", "json", missing.URL, ok.URL)
		if !errors.Is(err, errAuditFailed) {
			t.Errorf("expected errAuditFailed, got %v", err)
		}
		if !strings.Contains(stderr, "Audit error for "+missing.URL) {
			t.Errorf("expected audit error on stderr, got %q", stderr)
		}
		if got := decodeJSON[model.AuditResult](t, stdout); got.URL != ok.URL {
			t.Errorf("expected report for %s, got %s", ok.URL, got.URL)
		}
	})
}

// TestAuditCmd_PersistenceFailures tests that an audit whose record is lost
// makes the command fail.
func TestAuditCmd_PersistenceFailures(t *testing.T) {
	t.Parallel()

	t.Run("unwritable db dir", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, nil, 0600); err != nil {
			t.Fatal(err)
		}
		server := newShopServer(t)

		_, _, err := execute(t, "audit", "-c", writeTestConfig(t), "--db-dir", filepath.Join(blocker, "db"), server.URL)
		if err == nil {
			t.Fatal("expected an error when the database cannot be created")
		}
	})

	t.Run("save fails after the audit", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		// The store is reachable at startup and breaks while the page is fetched.
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			mr.SetError("ERR store unavailable")
			_, _ = w.Write([]byte(pageWithTitle(strings.Repeat("t", 40))))
		}))
		t.Cleanup(server.Close)

		stdout, stderr, err := execute(t, "audit", "-c", writeTestConfig(t), "-f", "json",
			"--store", "redis", "--redis-url", "redis://"+mr.Addr(), server.URL)
		if !errors.Is(err, errAuditFailed) {
			t.Errorf("expected errAuditFailed, got %v", err)
		}
		if !strings.Contains(stderr, "save audit") {
			t.Errorf("expected the save error on stderr, got %q", stderr)
		}
		if got := decodeJSON[model.AuditResult](t, stdout); got.URL != server.URL {
			t.Errorf("report should still be written, got %+v", got)
		}
	})
}

// TestAuditCmd_OutputFile tests writing the report to a file.
func TestAuditCmd_OutputFile(t *testing.T) {
	t.Parallel()

	server := newShopServer(t)
	path := filepath.Join(t.TempDir(), "reports", "shop.md")

	stdout, _, err := execute(t, "audit", "-c", writeTestConfig(t), "--no-save", "-f", "markdown", "-o", path, server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "" {
		t.Errorf("expected nothing on stdout, got %q", stdout)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "# SEO Audit Report") {
		t.Errorf("unexpected report:\n%s", content)
	}
}

func TestCompareAudits(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	issue := func(id string, s model.Severity) model.SEOIssue {
		return model.SEOIssue{ID: id, Title: id, Severity: s}
	}
	previous := &model.StoredAudit{ID: 1, AuditResult: model.AuditResult{
		URL: "https://shop.example", Timestamp: ts, Score: 80,
		Issues: []model.SEOIssue{
			issue("missing-h1", model.SeverityCritical),
			issue("external-links", model.SeverityOptimization),
		},
	}}
	current := &model.StoredAudit{ID: 4, AuditResult: model.AuditResult{
		URL: "https://shop.example", Timestamp: ts.Add(24 * time.Hour), Score: 70,
		Issues: []model.SEOIssue{
			issue("title-too-long", model.SeverityWarning),
			issue("external-links", model.SeverityOptimization),
			issue("slow-loading", model.SeverityWarning),
		},
	}}

	got := compareAudits(previous, current)
	want := &ComparisonResult{
		URL:      "https://shop.example",
		Previous: AuditMetadata{ID: 1, Timestamp: ts, Score: 80},
		Current:  AuditMetadata{ID: 4, Timestamp: ts.Add(24 * time.Hour), Score: 70},
		NewIssues: []model.SEOIssue{
			issue("title-too-long", model.SeverityWarning),
			issue("slow-loading", model.SeverityWarning),
		},
		ResolvedIssues: []model.SEOIssue{issue("missing-h1", model.SeverityCritical)},
		UnchangedCount: 1,
		ScoreDelta:     -10,
		Direction:      directionWorsened,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("comparison mismatch (-want +got):\n%s", diff)
	}

	if same := compareAudits(previous, previous); same.Direction != directionUnchanged || same.UnchangedCount != 2 {
		t.Errorf("self comparison = %+v", same)
	}
}

func TestFormatDelta(t *testing.T) {
	t.Parallel()

	for in, want := range map[int]string{3: "+3", 0: "0", -2: "-2"} {
		if got := formatDelta(in); got != want {
			t.Errorf("formatDelta(%d) = %q, want %q", in, got, want)
		}
	}
}
