// Command crawler runs the polite web crawler: it drains the persistent
// queue, fetches and scrapes pages, and writes pages/favicons/discovered
// links back to Postgres until interrupted.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codepr/arachne/crawler"
	"github.com/codepr/arachne/crawler/store"
	"github.com/codepr/arachne/env"
	"github.com/codepr/arachne/messaging"
)

func main() {
	databaseURL := env.MustGetEnv("DATABASE_URL")

	ctx, cancel := context.WithCancel(context.Background())

	pg, err := store.Open(ctx, databaseURL)
	if err != nil {
		log.Fatalf("crawler: opening store: %v", err)
	}
	defer pg.Close()

	events := messaging.NewChannelQueue()
	defer events.Close()
	go drainEvents(events)

	c := crawler.NewFromEnv(pg, events)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		cancel()
	}()

	if err := c.Run(ctx); err != nil {
		log.Fatalf("crawler: run: %v", err)
	}
}

// drainEvents discards the crawler's discovered-links events when nothing
// else has subscribed; a real deployment would instead Consume these into
// the indexer's own ingestion path.
func drainEvents(q messaging.ChannelQueue) {
	events := make(chan []byte)
	go func() {
		_ = q.Consume(events)
	}()
	for range events {
	}
}
