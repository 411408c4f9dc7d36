package crawler

import (
	"context"
	"time"

	"github.com/codepr/arachne/crawler/store"
)

const (
	defaultDequeueBatchSize = 100
	emptyQueueBackoff       = 1 * time.Second
)

// feeder is the Queue Feeder (C1): it continuously drains the persistent
// queue into the crawler's bounded channel, blocking on send to apply
// back-pressure once workers fall behind.
type feeder struct {
	crawler *Crawler
}

func (f *feeder) run(ctx context.Context) {
	c := f.crawler
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		rows, err := c.store.DequeueBatch(ctx, defaultDequeueBatchSize)
		if err != nil {
			c.logger.Printf("feeder: dequeue failed: %v", err)
			if !sleepOrDone(ctx, c.clock, emptyQueueBackoff) {
				return
			}
			continue
		}

		if len(rows) == 0 {
			if !sleepOrDone(ctx, c.clock, emptyQueueBackoff) {
				return
			}
			continue
		}

		for _, row := range rows {
			task, ok := taskFromRow(row)
			if !ok {
				continue
			}
			select {
			case c.tasks <- task:
			case <-ctx.Done():
				return
			}
		}
	}
}

func taskFromRow(row store.QueueRow) (Task, bool) {
	canonical, domain, ok := Canonicalize(row.URL)
	if !ok {
		return Task{}, false
	}
	return Task{ID: row.ID, Domain: domain, CanonicalURL: canonical}, true
}

// sleepOrDone sleeps for d on clock, returning false early if ctx is
// cancelled during the wait.
func sleepOrDone(ctx context.Context, clk Clock, d time.Duration) bool {
	select {
	case <-clk.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
