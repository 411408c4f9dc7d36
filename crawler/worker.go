package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codepr/arachne/crawler/fetcher"
	"github.com/codepr/arachne/crawler/store"
)

// worker is a single crawling goroutine sharing the Crawler's queue
// channel, VisitedSet, DomainRegistry, Fetcher and Store.
type worker struct {
	id      int
	crawler *Crawler
}

// run drains tasks from the crawler's channel until it is closed or ctx is
// cancelled, applying the five-step worker loop: visited check, politeness
// check, fetch, classify, persist.
func (w *worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-w.crawler.tasks:
			if !ok {
				return
			}
			w.process(ctx, task)
		}
	}
}

func (w *worker) process(ctx context.Context, task Task) {
	c := w.crawler

	if c.visited.Contains(task.CanonicalURL) {
		return
	}

	switch c.domains.Decide(task.Domain, task.CanonicalURL) {
	case decisionDisallowed:
		return
	case decisionRetryLater:
		if err := c.store.SaveToQueue(ctx, task.Domain, task.CanonicalURL); err != nil {
			c.logger.Printf("worker %d: re-enqueue after cooldown: %v", w.id, err)
		}
		return
	}

	c.visited.Insert(task.CanonicalURL)

	outcome := w.crawl(ctx, task)
	switch outcome.kind {
	case outcomeRetry:
		c.visited.Remove(task.CanonicalURL)
		if err := c.store.SaveToQueue(ctx, task.Domain, task.CanonicalURL); err != nil {
			c.logger.Printf("worker %d: re-enqueue after %s: %v", w.id, outcome.reason, err)
		}
	case outcomeRedirected:
		c.visited.Remove(task.CanonicalURL)
	case outcomeDropped:
		c.logger.Printf("worker %d: dropped %s: %s", w.id, task.CanonicalURL, outcome.reason)
	case outcomeSaved:
		c.status.recordSaved()
	}
}

// crawl performs the fetch, classification and persistence for a single
// task, returning the crawlError describing what happened to it.
func (w *worker) crawl(ctx context.Context, task Task) *crawlError {
	c := w.crawler

	res, err := c.fetcher.Get(ctx, task.CanonicalURL)
	if err != nil {
		var bodyErr *fetcher.BodyReadError
		if errors.As(err, &bodyErr) {
			return retryErr("body read failure", err)
		}
		if isTimeoutErr(err) {
			return retryErr("network timeout", err)
		}
		return dropErr("network error", err)
	}

	if canonicalFinal, finalDomain, ok := Canonicalize(res.FinalURL); ok && canonicalFinal != task.CanonicalURL {
		if err := c.store.SaveToQueue(ctx, finalDomain, canonicalFinal); err != nil {
			c.logger.Printf("worker %d: enqueue redirect target: %v", w.id, err)
		}
		return &crawlError{kind: outcomeRedirected, reason: "redirected to new canonical url"}
	}

	if res.StatusCode >= 500 {
		return retryErr(fmt.Sprintf("server error %d", res.StatusCode), nil)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return dropErr(fmt.Sprintf("non-success status %d", res.StatusCode), nil)
	}

	if !looksLikeHTML(res.ContentType, task.CanonicalURL) {
		return dropErr("non-html content", nil)
	}

	page, err := Scrape(task.Domain, task.CanonicalURL, string(res.Body))
	if err != nil {
		return retryErr("scrape failure", err)
	}
	if page.FaviconURL == "" {
		page.FaviconURL = fmt.Sprintf("https://%s/favicon.ico", task.Domain)
	}

	storePage := store.Page{
		Domain:          task.Domain,
		URL:             task.CanonicalURL,
		Title:           safeSlice(page.Title, 100),
		Content:         page.Content,
		BodyLength:      len(res.Body),
		ContentType:     res.ContentType,
		ResponseTimeMs:  int(res.Elapsed.Milliseconds()),
		StatusCode:      res.StatusCode,
		SEOScore:        ScoreSEO(page),
		MetaDescription: safeSlice(page.MetaDescription, 200),
		MetaKeywords:    safeSlice(page.MetaKeywords, 200),
		MetaThemeColor:  page.MetaThemeColor,
		MetaOGImage:     safeSlice(page.MetaOGImage, 512),
		FaviconURL:      page.FaviconURL,
	}

	if err := c.store.SavePage(ctx, storePage, page.Links); err != nil {
		c.logger.Printf("worker %d: saving %s: %v", w.id, task.CanonicalURL, err)
		return retryErr("persistence failure", err)
	}
	c.emitDiscovered(task.CanonicalURL, page.Links)
	return &crawlError{kind: outcomeSaved, reason: "persisted"}
}

func looksLikeHTML(contentType, url string) bool {
	if contentType != "" {
		return strings.Contains(contentType, "text/html")
	}
	return strings.HasSuffix(url, ".html") || strings.HasSuffix(url, ".htm")
}

// isTimeoutErr walks err's Unwrap chain looking for a net.Error reporting
// Timeout(), the shape rehttp/http.Client surface a 10s deadline as.
func isTimeoutErr(err error) bool {
	type timeouter interface{ Timeout() bool }
	for e := err; e != nil; {
		if t, ok := e.(timeouter); ok {
			return t.Timeout()
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}
