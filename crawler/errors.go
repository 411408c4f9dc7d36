package crawler

import "fmt"

// outcomeKind classifies the result of attempting to crawl a single task,
// mirroring the CrawlError enum of the system this crawler was ported from:
// every HTTP/parse outcome reduces to one of a handful of dispositions the
// worker loop understands.
type outcomeKind int

const (
	// outcomeSaved means a page was scraped and persisted successfully.
	outcomeSaved outcomeKind = iota
	// outcomeRetry means the URL should be returned to the persistent queue.
	outcomeRetry
	// outcomeDropped means the URL is discarded without persistence or retry.
	outcomeDropped
	// outcomeRedirected means the response resolved to a different canonical
	// URL, which is enqueued in place of the original.
	outcomeRedirected
)

func (k outcomeKind) String() string {
	switch k {
	case outcomeSaved:
		return "saved"
	case outcomeRetry:
		return "retry"
	case outcomeDropped:
		return "dropped"
	case outcomeRedirected:
		return "redirected"
	default:
		return "unknown"
	}
}

// crawlError wraps the reason a task did not result in a saved page, tagging
// it with the outcome that should be applied.
type crawlError struct {
	kind   outcomeKind
	reason string
	err    error
}

func (e *crawlError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.reason, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.reason)
}

func (e *crawlError) Unwrap() error { return e.err }

func retryErr(reason string, err error) *crawlError {
	return &crawlError{kind: outcomeRetry, reason: reason, err: err}
}

func dropErr(reason string, err error) *crawlError {
	return &crawlError{kind: outcomeDropped, reason: reason, err: err}
}
