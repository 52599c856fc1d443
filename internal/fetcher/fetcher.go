package fetcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/shopaudit/internal/config"
)

// Page is the raw material of one audit.
type Page struct {
	// URL is the normalized URL that was requested.
	URL string

	// HTML is the response body decoded to UTF-8.
	HTML string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// LoadTime is the time from sending the request to receiving the response headers.
	LoadTime time.Duration

	// Headers are the response headers.
	Headers http.Header
}

// LoadTimeMs returns the load time in whole milliseconds.
func (p *Page) LoadTimeMs() int64 {
	return p.LoadTime.Milliseconds()
}

// Fetcher performs single-page GET requests.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	sites       *config.File
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the hard deadline of each fetch, body included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many body bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its Timeout is ignored in favour of WithTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithSiteConfigs applies per-host cookies, headers, user agent and timeout.
func WithSiteConfigs(file *config.File) Option {
	return func(f *Fetcher) {
		f.sites = file
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher with the default timeout, user agent and body limit.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      newHTTPClient(),
		timeout:     config.DefaultTimeout,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// newHTTPClient returns a client that follows at most 10 redirects.
// The deadline comes from the request context, not from Client.Timeout.
func newHTTPClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Timeout returns the configured fetch timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

// Fetch normalizes rawURL and retrieves the page.
// The returned error is one of *ValidationError, *TimeoutError,
// *HTTPStatusError or *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	target, err := Normalize(rawURL)
	if err != nil {
		return nil, err
	}

	site := f.siteConfig(target)
	timeout := f.timeout
	if site.Timeout > 0 {
		timeout = site.Timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &ValidationError{Input: rawURL, Reason: err.Error()}
	}
	f.setHeaders(req, site)

	f.logger.Debug("fetching page", "url", target, "timeout", timeout)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, target, timeout, err)
	}
	defer resp.Body.Close()
	loadTime := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("non-success status", "url", target, "status", resp.StatusCode)
		return nil, &HTTPStatusError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, classify(ctx, target, timeout, err)
	}

	f.logger.Debug("page fetched",
		"url", target,
		"status", resp.StatusCode,
		"bytes", len(body),
		"loadTimeMs", loadTime.Milliseconds(),
	)

	return &Page{
		URL:        target,
		HTML:       body,
		StatusCode: resp.StatusCode,
		LoadTime:   loadTime,
		Headers:    resp.Header,
	}, nil
}

func (f *Fetcher) siteConfig(target string) config.SiteConfig {
	if f.sites == nil {
		return config.SiteConfig{}
	}
	u, err := url.Parse(target)
	if err != nil {
		return f.sites.Defaults
	}
	return f.sites.GetSiteConfig(u.Hostname())
}

func (f *Fetcher) setHeaders(req *http.Request, site config.SiteConfig) {
	ua := f.userAgent
	if site.UserAgent != "" {
		ua = site.UserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	if site.Cookie != "" {
		req.Header.Set("Cookie", site.Cookie)
	}
	for key, value := range site.Headers {
		req.Header.Set(key, value)
	}
}

// readBody reads at most maxBodySize bytes and decodes them to UTF-8 using
// the charset from the Content-Type header or the document's meta tags.
func (f *Fetcher) readBody(resp *http.Response) (string, error) {
	limited := io.LimitReader(resp.Body, f.maxBodySize)
	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// classify maps a transport error onto the fetch error taxonomy.
func classify(ctx context.Context, target string, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{URL: target, Timeout: timeout}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{URL: target, Timeout: timeout}
	}
	return &FetchError{URL: target, Err: err}
}
