package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const maxPoolSize = 40

// Postgres is the production Store implementation, backed by a pgxpool
// connection pool in the same spirit as the diesel+r2d2 pool this gateway
// was ported from (see other_examples' nimbus-crawler for the idiomatic Go
// pgx/pgxpool shape this package follows).
type Postgres struct {
	pool *pgxpool.Pool
}

// Open establishes a pooled connection to databaseURL, capping the pool at
// maxPoolSize connections.
func Open(ctx context.Context, databaseURL string) (*Postgres, error) {
	if !validDSN(databaseURL) {
		return nil, fmt.Errorf("store: %q does not look like a postgres connection string", databaseURL)
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: parsing database url: %w", err)
	}
	cfg.MaxConns = maxPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: opening pool: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// LoadVisitedURLs reads every URL already present in the pages table.
func (p *Postgres) LoadVisitedURLs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := p.pool.Query(ctx, `SELECT url FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("store: loading visited urls: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("store: scanning visited url: %w", err)
		}
		urls[u] = struct{}{}
	}
	return urls, rows.Err()
}

// dequeueSQL atomically claims a domain-diverse, recency-biased batch: it
// picks the 10 domains with the most recent queue activity, then deletes
// and returns up to batchSize rows from those domains ordered by recency.
const dequeueSQL = `
WITH recent_domains AS (
	SELECT domain, MAX(timestamp) AS last_seen
	FROM queue
	GROUP BY domain
	ORDER BY last_seen DESC
	LIMIT 10
),
candidates AS (
	SELECT q.id
	FROM queue q
	JOIN recent_domains rd ON rd.domain = q.domain
	ORDER BY q.timestamp DESC
	LIMIT $1
)
DELETE FROM queue
WHERE id IN (SELECT id FROM candidates)
RETURNING id, domain, url, timestamp
`

// DequeueBatch atomically claims up to batchSize rows, see dequeueSQL.
func (p *Postgres) DequeueBatch(ctx context.Context, batchSize int) ([]QueueRow, error) {
	rows, err := p.pool.Query(ctx, dequeueSQL, batchSize)
	if err != nil {
		return nil, fmt.Errorf("store: dequeuing batch: %w", err)
	}
	defer rows.Close()

	var out []QueueRow
	for rows.Next() {
		var r QueueRow
		if err := rows.Scan(&r.ID, &r.Domain, &r.URL, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("store: scanning queue row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SavePage upserts the favicon, inserts the page row referencing it, and
// bulk-inserts the page's discovered links back into the queue.
func (p *Postgres) SavePage(ctx context.Context, page Page, links map[string]string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("store: beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var faviconID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO favicons (url) VALUES ($1)
		ON CONFLICT (url) DO UPDATE SET url = EXCLUDED.url
		RETURNING id
	`, page.FaviconURL).Scan(&faviconID)
	if err != nil {
		return fmt.Errorf("store: upserting favicon: %w", err)
	}

	now := time.Now().UnixMilli()
	_, err = tx.Exec(ctx, `
		INSERT INTO pages (
			domain, url, title, favicon_id, content, body, body_length,
			content_type, response_time, status_code, last_crawled,
			last_indexed, seo_score, meta_description, meta_keywords,
			meta_theme_color, meta_og_image
		) VALUES ($1,$2,$3,$4,$5,NULL,$6,$7,$8,$9,$10,NULL,$11,$12,$13,$14,$15)
	`,
		page.Domain, page.URL, nullIfEmpty(page.Title), faviconID,
		nullIfEmpty(page.Content), page.BodyLength, page.ContentType,
		page.ResponseTimeMs, page.StatusCode, now, page.SEOScore,
		nullIfEmpty(page.MetaDescription), nullIfEmpty(page.MetaKeywords),
		nullIfEmpty(page.MetaThemeColor), nullIfEmpty(page.MetaOGImage),
	)
	if err != nil {
		return fmt.Errorf("store: inserting page: %w", err)
	}

	if len(links) > 0 {
		batch := &pgx.Batch{}
		count := 0
		for url, domain := range links {
			if len(url) > 2048 {
				continue
			}
			batch.Queue(`
				INSERT INTO queue (domain, url, timestamp) VALUES ($1,$2,$3)
				ON CONFLICT (url) DO NOTHING
			`, domain, url, now)
			count++
		}
		if count > 0 {
			br := tx.SendBatch(ctx, batch)
			for i := 0; i < count; i++ {
				if _, err := br.Exec(); err != nil {
					br.Close()
					return fmt.Errorf("store: inserting discovered link: %w", err)
				}
			}
			if err := br.Close(); err != nil {
				return fmt.Errorf("store: closing link batch: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// SaveToQueue re-enqueues a single URL idempotently, stamped with the
// current time.
func (p *Postgres) SaveToQueue(ctx context.Context, domain, url string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO queue (domain, url, timestamp) VALUES ($1,$2,$3)
		ON CONFLICT (url) DO NOTHING
	`, domain, url, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: re-enqueuing %s: %w", url, err)
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ensure Postgres satisfies a DATABASE_URL sanity check at construction time
// rather than letting a malformed DSN slip past this package silently.
func validDSN(dsn string) bool {
	return strings.Contains(dsn, "://")
}
