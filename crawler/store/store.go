// Package store contains the persistence gateway used by the crawler: a
// thin, typed facade over the relational store backing the queue, pages
// and favicons tables.
package store

import "context"

// QueueRow mirrors a row of the persistent queue table.
type QueueRow struct {
	ID        int64
	Domain    string
	URL       string
	Timestamp int64
}

// Page is the row persisted for a successfully scraped page.
type Page struct {
	Domain          string
	URL             string
	Title           string
	Content         string
	BodyLength      int
	ContentType     string
	ResponseTimeMs  int
	StatusCode      int
	LastCrawledMs   int64
	SEOScore        int
	MetaDescription string
	MetaKeywords    string
	MetaThemeColor  string
	MetaOGImage     string
	FaviconURL      string
}

// Store is the persistence gateway consumed by the crawler core. A single
// implementation (Postgres, backed by pgxpool) is provided in this package;
// the interface exists so the worker pool and feeder can be exercised
// against an in-memory fake in tests.
type Store interface {
	// LoadVisitedURLs returns every URL already present in the pages table,
	// used to seed the in-memory VisitedSet at startup.
	LoadVisitedURLs(ctx context.Context) (map[string]struct{}, error)

	// DequeueBatch atomically claims up to a batch of queue rows, biased
	// toward the most recently touched domains, removing them from the
	// queue in the same operation.
	DequeueBatch(ctx context.Context, batchSize int) ([]QueueRow, error)

	// SavePage upserts the page's favicon, inserts the page row, and bulk
	// inserts its discovered links back into the queue (idempotently).
	SavePage(ctx context.Context, page Page, links map[string]string) error

	// SaveToQueue inserts a single URL back into the queue with a fresh
	// timestamp, idempotently.
	SaveToQueue(ctx context.Context, domain, url string) error

	// Close releases any underlying resources (connection pools).
	Close()
}
