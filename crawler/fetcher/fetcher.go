// Package fetcher implements the downloading half of the crawler: a single
// HTTP client wrapped in a retry transport, used by every worker to fetch a
// page body. Robots.txt is not fetched through this package.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"
)

// BodyReadError reports that the request round-trip completed (status and
// headers received) but the body could not be drained, a condition callers
// should treat as retryable rather than as a connect/request failure.
type BodyReadError struct {
	URL string
	Err error
}

func (e *BodyReadError) Error() string {
	return fmt.Sprintf("fetcher: reading body of %s: %v", e.URL, e.Err)
}

func (e *BodyReadError) Unwrap() error { return e.Err }

// Result is the outcome of a single GET: the final (post-redirect) URL, the
// response's status and content-type, the raw body, and how long the round
// trip took.
type Result struct {
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
}

// Fetcher performs HTTP GET requests with a configured user agent, timeout,
// and exponential-jitter retry policy on temporary network errors.
type Fetcher struct {
	userAgent string
	client    *http.Client
}

// New creates a Fetcher. It retries up to 3 times, only on temporary
// network errors, backing off exponentially with jitter between 1s and
// 10s — the same rehttp policy the page-fetch client in this codebase has
// always used.
func New(userAgent string, timeout time.Duration) *Fetcher {
	transport := rehttp.NewTransport(
		http.DefaultTransport,
		rehttp.RetryAll(rehttp.RetryMaxRetries(3), rehttp.RetryTemporaryErr()),
		rehttp.ExpJitterDelay(1*time.Second, 10*time.Second),
	)
	client := &http.Client{Timeout: timeout, Transport: transport}
	return &Fetcher{userAgent: userAgent, client: client}
}

// Get performs a GET against targetURL and returns the captured Result, or
// an error if the request never completed (connect failure, timeout,
// context cancellation, too many redirects), or a *BodyReadError if the
// response arrived but its body could not be read.
func (f *Fetcher) Get(ctx context.Context, targetURL string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return Result{}, fmt.Errorf("fetcher: building request for %s: %w", targetURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return Result{}, fmt.Errorf("fetcher: GET %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return Result{}, &BodyReadError{URL: targetURL, Err: err}
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Result{
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Elapsed:     elapsed,
	}, nil
}
