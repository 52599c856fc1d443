package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/shopaudit/internal/config"
	"github.com/nao1215/shopaudit/internal/database"
	"github.com/nao1215/shopaudit/internal/fetcher"
	"github.com/nao1215/shopaudit/internal/metrics"
	"github.com/nao1215/shopaudit/internal/model"
)

var fixedTime = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

// stubAuditor returns a canned result or error and counts calls.
type stubAuditor struct {
	err   error
	panic bool
	calls atomic.Int32
}

func (a *stubAuditor) Run(_ context.Context, url string) (*model.AuditResult, error) {
	a.calls.Add(1)
	if a.panic {
		panic("boom")
	}
	if a.err != nil {
		return nil, a.err
	}
	return &model.AuditResult{
		URL:       url,
		Timestamp: fixedTime,
		Score:     72,
		Summary:   model.AuditSummary{Passed: 22, Warnings: 2, Critical: 1, Optimizations: 4},
		Issues: []model.SEOIssue{{
			ID: "missing-meta-description", Category: model.CategoryMetaTags, Title: "Missing meta description",
			Description: "No meta description.", Severity: model.SeverityCritical, Impact: model.ImpactHigh,
		}},
		ActionPlan: []model.ActionPlanItem{},
	}, nil
}

func newTestServer(t *testing.T, auditor *stubAuditor, cfg *config.ServerConfig, opts ...Option) (*httptest.Server, database.Store) {
	t.Helper()

	if cfg == nil {
		cfg = &config.ServerConfig{Addr: ":0"}
	}
	store := database.NewMemoryStore()
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(func() time.Time { return fixedTime }),
		WithVersion("1.2.3"),
	}, opts...)

	srv := httptest.NewServer(New(auditor, store, cfg, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

// TestAuditEndpoint tests auditing, saving and error mapping.
func TestAuditEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("audits and saves", func(t *testing.T) {
		t.Parallel()

		srv, store := newTestServer(t, &stubAuditor{}, nil)
		resp := post(t, srv.URL+"/api/audit", `{"url":"https://shop.example"}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if resp.Header.Get(RequestIDHeader) == "" {
			t.Error("expected a request id")
		}

		got := decode[model.StoredAudit](t, resp)
		if got.ID != 1 || got.Score != 72 || got.URL != "https://shop.example" {
			t.Errorf("unexpected audit %+v", got)
		}
		if _, err := store.GetByID(context.Background(), got.ID); err != nil {
			t.Errorf("audit was not saved: %v", err)
		}
	})

	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"empty body", ``, nil, http.StatusBadRequest, CodeBadRequest},
		{"malformed json", `{"url":`, nil, http.StatusBadRequest, CodeBadRequest},
		{"missing url", `{}`, nil, http.StatusBadRequest, CodeBadRequest},
		{"invalid url", `{"url":"ftp://x"}`, &fetcher.ValidationError{Input: "ftp://x", Reason: "scheme"}, http.StatusBadRequest, fetcher.KindValidation},
		{"timeout", `{"url":"https://slow.example"}`, &fetcher.TimeoutError{URL: "https://slow.example", Timeout: time.Second}, http.StatusGatewayTimeout, fetcher.KindTimeout},
		{"upstream 404", `{"url":"https://gone.example"}`, &fetcher.HTTPStatusError{URL: "https://gone.example", StatusCode: 404}, http.StatusBadGateway, fetcher.KindHTTPStatus},
		{"connection refused", `{"url":"https://down.example"}`, &fetcher.FetchError{URL: "https://down.example", Err: io.ErrUnexpectedEOF}, http.StatusBadGateway, fetcher.KindFetch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, store := newTestServer(t, &stubAuditor{err: tt.err}, nil)
			resp := post(t, srv.URL+"/api/audit", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decode[errorResponse](t, resp)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.RequestID == "" {
				t.Error("expected request id in error body")
			}
			if recent, _ := store.GetRecent(context.Background(), 0); len(recent) != 0 {
				t.Error("failed audits must not be saved")
			}
		})
	}
}

// TestAuditsEndpoints tests listing and fetching saved audits.
func TestAuditsEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &stubAuditor{}, nil)

	if got := decode[[]model.StoredAudit](t, get(t, srv.URL+"/api/audits/recent")); len(got) != 0 {
		t.Errorf("expected empty list, got %d", len(got))
	}

	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		if resp := post(t, srv.URL+"/api/audit", `{"url":"`+u+`"}`); resp.StatusCode != http.StatusOK {
			t.Fatalf("audit %s: %d", u, resp.StatusCode)
		}
	}

	recent := decode[[]model.StoredAudit](t, get(t, srv.URL+"/api/audits/recent?limit=2"))
	var urls []string
	for _, a := range recent {
		urls = append(urls, a.URL)
	}
	if diff := cmp.Diff([]string{"https://c.example", "https://b.example"}, urls); diff != "" {
		t.Errorf("recent mismatch (-want +got):\n%s", diff)
	}

	if got := decode[[]model.StoredAudit](t, get(t, srv.URL+"/api/audits/recent?limit=abc")); len(got) != 3 {
		t.Errorf("invalid limit should use the default, got %d audits", len(got))
	}

	one := decode[model.StoredAudit](t, get(t, srv.URL+"/api/audits/2"))
	if one.URL != "https://b.example" {
		t.Errorf("audit 2 url = %q", one.URL)
	}

	if resp := get(t, srv.URL+"/api/audits/99"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/api/audits/x"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid id status = %d", resp.StatusCode)
	}
}

// TestExportEndpoint tests exports by id and by body, and the premium gate.
func TestExportEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &stubAuditor{}, &config.ServerConfig{Addr: ":0", PremiumToken: "secret"})
	if resp := post(t, srv.URL+"/api/audit", `{"url":"https://shop.example"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("audit status = %d", resp.StatusCode)
	}

	t.Run("markdown by id", func(t *testing.T) {
		t.Parallel()

		resp := post(t, srv.URL+"/api/export/markdown", `{"auditId":1}`)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		want := `attachment; filename="audit-seo-https---shop-example-2026-04-01.md"`
		if got := resp.Header.Get("Content-Disposition"); got != want {
			t.Errorf("Content-Disposition = %q, want %q", got, want)
		}
		body, _ := io.ReadAll(resp.Body)
		if !bytes.Contains(body, []byte("SEO Audit Report")) {
			t.Error("expected markdown report")
		}
	})

	t.Run("json from posted result", func(t *testing.T) {
		t.Parallel()

		result, _ := (&stubAuditor{}).Run(context.Background(), "https://posted.example")
		data, _ := json.Marshal(result)
		resp := post(t, srv.URL+"/api/export/json", string(data))
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		got := decode[model.AuditResult](t, resp)
		if diff := cmp.Diff(*result, got); diff != "" {
			t.Errorf("exported result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("html requires token", func(t *testing.T) {
		t.Parallel()

		resp := post(t, srv.URL+"/api/export/html", `{"auditId":1}`)
		if resp.StatusCode != http.StatusPaymentRequired {
			t.Errorf("status = %d, want 402", resp.StatusCode)
		}

		resp = post(t, srv.URL+"/api/export/html", `{"auditId":1}`, "Authorization", "Bearer wrong")
		if resp.StatusCode != http.StatusPaymentRequired {
			t.Errorf("wrong token status = %d, want 402", resp.StatusCode)
		}

		resp = post(t, srv.URL+"/api/export/html", `{"auditId":1}`, "Authorization", "Bearer secret")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("valid token status = %d", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("bad requests", func(t *testing.T) {
		t.Parallel()

		cases := map[string]struct {
			path, body string
			status     int
		}{
			"unknown format": {"/api/export/pdf", `{"auditId":1}`, http.StatusBadRequest},
			"text format":    {"/api/export/text", `{"auditId":1}`, http.StatusBadRequest},
			"unknown id":     {"/api/export/json", `{"auditId":42}`, http.StatusNotFound},
			"empty object":   {"/api/export/json", `{}`, http.StatusBadRequest},
			"not json":       {"/api/export/json", `nope`, http.StatusBadRequest},
		}
		for name, c := range cases {
			if resp := post(t, srv.URL+c.path, c.body); resp.StatusCode != c.status {
				t.Errorf("%s: status = %d, want %d", name, resp.StatusCode, c.status)
			}
		}
	})
}

// TestServiceEndpoints tests health, ping, status, metrics and 404.
func TestServiceEndpoints(t *testing.T) {
	t.Parallel()

	collector := metrics.NewCollector()
	srv, _ := newTestServer(t, &stubAuditor{}, nil, WithMetrics(collector))

	if got := decode[map[string]string](t, get(t, srv.URL+"/health")); got["status"] != "ok" {
		t.Errorf("health = %v", got)
	}

	body, _ := io.ReadAll(get(t, srv.URL+"/ping").Body)
	if string(body) != "pong" {
		t.Errorf("ping = %q", body)
	}

	status := decode[statusResponse](t, get(t, srv.URL+"/api/status"))
	want := statusResponse{Status: "online", Service: "shopaudit", Timestamp: "2026-04-01T10:00:00.000Z", Version: "1.2.3"}
	if diff := cmp.Diff(want, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}

	resp := get(t, srv.URL+"/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route status = %d", resp.StatusCode)
	}
	if e := decode[errorResponse](t, resp); e.Code != CodeNotFound {
		t.Errorf("code = %q", e.Code)
	}

	metricsBody, _ := io.ReadAll(get(t, srv.URL+"/metrics").Body)
	if !bytes.Contains(metricsBody, []byte(`shopaudit_http_requests_total{code="200",method="GET",route="GET /health"} 1`)) {
		t.Errorf("expected the health request in metrics:\n%s", metricsBody)
	}
}

// TestMiddleware tests request ids, CORS, rate limiting and recovery.
func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("keeps client request id", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t, &stubAuditor{}, nil)
		req, _ := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/health", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
			t.Errorf("request id = %q", got)
		}
	})

	t.Run("cors", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t, &stubAuditor{}, &config.ServerConfig{Addr: ":0", AllowedOrigins: []string{"https://app.example"}})

		for origin, want := range map[string]string{"https://app.example": "https://app.example", "https://evil.example": ""} {
			req, _ := http.NewRequestWithContext(context.Background(), http.MethodOptions, srv.URL+"/api/audit", nil)
			req.Header.Set("Origin", origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusNoContent {
				t.Errorf("%s: preflight status = %d", origin, resp.StatusCode)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != want {
				t.Errorf("%s: allow origin = %q, want %q", origin, got, want)
			}
		}
	})

	t.Run("rate limit", func(t *testing.T) {
		t.Parallel()

		auditor := &stubAuditor{}
		srv, _ := newTestServer(t, auditor, &config.ServerConfig{Addr: ":0", RateLimit: 0.001, Burst: 2})

		var codes []int
		for range 3 {
			codes = append(codes, post(t, srv.URL+"/api/audit", `{"url":"https://a.example"}`).StatusCode)
		}
		if diff := cmp.Diff([]int{200, 200, 429}, codes); diff != "" {
			t.Errorf("status codes mismatch (-want +got):\n%s", diff)
		}
		if auditor.calls.Load() != 2 {
			t.Errorf("auditor called %d times, want 2", auditor.calls.Load())
		}
		if resp := get(t, srv.URL+"/health"); resp.StatusCode != http.StatusOK {
			t.Error("only audits are rate limited")
		}
	})

	t.Run("recovers from panics", func(t *testing.T) {
		t.Parallel()

		srv, _ := newTestServer(t, &stubAuditor{panic: true}, nil)
		resp := post(t, srv.URL+"/api/audit", `{"url":"https://a.example"}`)
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("status = %d", resp.StatusCode)
		}
		if e := decode[errorResponse](t, resp); e.Error != "internal server error" {
			t.Errorf("error = %q", e.Error)
		}
	})
}

// TestTokenGate tests bearer token checks.
func TestTokenGate(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/export/html", nil)
	if err := NewTokenGate("").Allow(req); err == nil {
		t.Error("empty token must refuse")
	}
	req.Header.Set("Authorization", "Bearer t0k")
	if err := NewTokenGate("t0k").Allow(req); err != nil {
		t.Errorf("expected allow, got %v", err)
	}
	if err := NewTokenGate("other").Allow(req); err == nil {
		t.Error("wrong token must refuse")
	}
	if err := (OpenGate{}).Allow(req); err != nil {
		t.Error("open gate must allow")
	}
}
