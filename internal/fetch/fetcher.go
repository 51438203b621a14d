package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Error is returned when a page fetch fails, either at the transport level
// or because the server answered with a non-2xx status.
type Error struct {
	// URL is the URL that failed.
	URL string

	// StatusCode is the HTTP status code, or zero for transport failures.
	StatusCode int

	// Err is the underlying transport error, nil for status failures.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher performs rate-limited HTTP GETs and returns parsed documents.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64

	// minDelay and maxDelay bound the randomized politeness pause
	// inserted between listing-page fetches.
	minDelay time.Duration
	maxDelay time.Duration

	// fetched tracks whether at least one fetch has completed; the pause
	// is never applied on the critical first-page path.
	fetched bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithDelayRange bounds the randomized pause between listing-page fetches.
// A zero max disables the pause entirely.
func WithDelayRange(minDelay, maxDelay time.Duration) Option {
	return func(f *Fetcher) {
		f.minDelay = minDelay
		f.maxDelay = maxDelay
	}
}

// New creates a Fetcher with the given HTTP client.
//
// Design decision: We require an external client because:
//  1. Timeout policy is owned by the caller's config
//  2. Tests can inject httptest clients
func New(client *http.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		userAgent:   "forummirror/1.0 (+https://github.com/nao1215/forummirror)",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		minDelay:    1 * time.Second,
		maxDelay:    3 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request and parses the response body as HTML.
// It returns a *fetch.Error on transport failure or non-2xx status.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}

	f.fetched = true
	return doc, nil
}

// Pause sleeps for a randomized duration within the configured delay range,
// honoring context cancellation. It is a no-op before the first fetch and
// when the range is disabled.
func (f *Fetcher) Pause(ctx context.Context) error {
	if !f.fetched || f.maxDelay <= 0 {
		return nil
	}

	delay := f.minDelay
	if spread := f.maxDelay - f.minDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread))) //nolint:gosec // politeness jitter, not cryptographic
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
