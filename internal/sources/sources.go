// Package sources discovers newly launched products from public listing
// sites. One adapter per origin; the Aggregator fans out over all enabled
// adapters and merges their results.
package sources

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/launchradar/launchradar/internal/model"
	"github.com/launchradar/launchradar/internal/resilience"
)

// Adapter is one listing-site integration. Discover returns up to limit
// previews from the origin's newest-launches page.
type Adapter interface {
	Source() model.Source
	Discover(ctx context.Context, limit int) ([]model.UnifiedProduct, error)
}

// DetailFetcher is implemented by adapters whose origin has per-product
// detail pages worth scraping on their own.
type DetailFetcher interface {
	FetchProduct(ctx context.Context, pageURL string) (*model.ProductRecord, error)
}

type settings struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	retry      resilience.RetryConfig
}

// Option configures an adapter.
type Option func(*settings)

// WithBaseURL overrides the origin's base URL, mainly for tests.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithTimeout bounds each page fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithRetry overrides the per-fetch retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(s *settings) { s.retry = cfg }
}

func newSettings(baseURL string, opts []Option) settings {
	s := settings{
		baseURL: baseURL,
		timeout: 15 * time.Second,
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{
			Timeout: s.timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return s
}

// Listing sites serve degraded or empty markup to obvious bots, so requests
// carry a realistic browser header set.
func browserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// fetchDocument GETs a page and parses it, retrying transient failures.
// Non-2xx responses and short bodies are errors; callers treat any error
// as an empty result.
func (s settings) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("sources", pageURL)
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*goquery.Document, error) {
		return s.fetchDocumentOnce(ctx, pageURL)
	})
}

func (s settings) fetchDocumentOnce(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sources: create request")
	}
	browserHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sources: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		err := eris.Errorf("sources: status %d fetching %s", resp.StatusCode, pageURL)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "sources: read body")
	}
	if len(body) < 100 {
		return nil, eris.New("sources: empty page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "sources: parse html")
	}
	return doc, nil
}

func (s settings) absoluteURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimSuffix(s.baseURL, "/") + "/" + strings.TrimPrefix(href, "/")
}
