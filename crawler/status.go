package crawler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const statusInterval = 5 * time.Second

// statusReporter periodically logs crawl throughput, grounded on the
// pages-per-second ticker the crawler loop this project was adapted from
// runs alongside its workers. Purely observational: disabling it changes
// nothing about how tasks are crawled.
type statusReporter struct {
	logger  *log.Logger
	clock   Clock
	visited *VisitedSet
	saved   int64
}

func newStatusReporter(logger *log.Logger, clk Clock, visited *VisitedSet) *statusReporter {
	return &statusReporter{logger: logger, clock: clk, visited: visited}
}

// recordSaved increments the running count of persisted pages; called by a
// worker every time SavePage succeeds.
func (s *statusReporter) recordSaved() {
	atomic.AddInt64(&s.saved, 1)
}

// run logs a throughput line every statusInterval until ctx is cancelled.
func (s *statusReporter) run(ctx context.Context) {
	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(statusInterval):
			total := atomic.LoadInt64(&s.saved)
			delta := total - last
			last = total
			rate := float64(delta) / statusInterval.Seconds()
			line := runewidth.FillRight(
				humanize.Comma(total)+" pages saved, "+humanize.Commaf(rate)+"/s, "+
					humanize.Comma(int64(s.visited.Len()))+" visited",
				72,
			)
			s.logger.Println(line)
		}
	}
}
