// Package crawler containing the crawling logics and utilities to scrape
// remote resources on the web
package crawler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/codepr/arachne/crawler/fetcher"
	"github.com/codepr/arachne/crawler/store"
	"github.com/codepr/arachne/env"
	"github.com/codepr/arachne/messaging"
)

const (
	defaultFetchTimeout time.Duration = 10 * time.Second
	defaultConcurrency  int           = 8
	defaultQueueSize    int           = 1000
	defaultUserAgent    string        = "Mozilla/5.0 (compatible; ArachneBot/1.0; +https://github.com/codepr/arachne)"
)

// DiscoveredLinks is emitted on the crawler's optional event queue every
// time a page is successfully scraped, decoupling downstream consumers
// (an indexer, a dashboard) from the crawl loop itself.
type DiscoveredLinks struct {
	URL   string   `json:"url"`
	Links []string `json:"links"`
}

// Settings configures a Crawler's dependencies and tunables.
type Settings struct {
	UserAgent       string
	FetchingTimeout time.Duration
	Concurrency     int
	QueueSize       int
	Clock           Clock
	Fetcher         interface {
		Get(ctx context.Context, url string) (fetcher.Result, error)
	}
	Store store.Store
	// Events, if set, receives a DiscoveredLinks payload per saved page.
	Events messaging.Producer
}

// Opt mutates Settings during construction.
type Opt func(*Settings)

// Crawler is the shared state every Queue Feeder and Worker goroutine
// borrows: the bounded task channel, the VisitedSet, the DomainRegistry,
// the fetcher, the store and the status reporter.
type Crawler struct {
	logger  *log.Logger
	tasks   chan Task
	visited *VisitedSet
	domains *DomainRegistry
	fetcher interface {
		Get(ctx context.Context, url string) (fetcher.Result, error)
	}
	store    store.Store
	events   messaging.Producer
	clock    Clock
	status   *statusReporter
	settings *Settings
}

// New builds a Crawler from explicit Settings. Any field left unset on
// settings gets a production default: a real HTTP fetcher, a real clock,
// and a queue size of 1000.
func New(settings *Settings) *Crawler {
	if settings.UserAgent == "" {
		settings.UserAgent = defaultUserAgent
	}
	if settings.FetchingTimeout == 0 {
		settings.FetchingTimeout = defaultFetchTimeout
	}
	if settings.Concurrency == 0 {
		settings.Concurrency = defaultConcurrency
	}
	if settings.QueueSize == 0 {
		settings.QueueSize = defaultQueueSize
	}
	if settings.Clock == nil {
		settings.Clock = NewClock()
	}
	if settings.Fetcher == nil {
		settings.Fetcher = fetcher.New(settings.UserAgent, settings.FetchingTimeout)
	}

	logger := log.New(os.Stderr, "crawler: ", log.LstdFlags)
	visited := NewVisitedSet()

	c := &Crawler{
		logger:   logger,
		tasks:    make(chan Task, settings.QueueSize),
		visited:  visited,
		domains:  NewDomainRegistry(settings.UserAgent, &http.Client{Timeout: settings.FetchingTimeout}, settings.Clock),
		fetcher:  settings.Fetcher,
		store:    settings.Store,
		events:   settings.Events,
		clock:    settings.Clock,
		status:   newStatusReporter(logger, settings.Clock, visited),
		settings: settings,
	}
	return c
}

// NewFromEnv builds a Crawler reading its tunables from the process
// environment, following the same GetEnv/GetEnvAsInt convention the rest
// of this codebase's constructors use, with the addition of fail-fast
// required variables.
func NewFromEnv(st store.Store, events messaging.Producer) *Crawler {
	settings := &Settings{
		UserAgent:       env.MustGetEnv("USER_AGENT"),
		FetchingTimeout: time.Duration(env.GetEnvAsInt("FETCH_TIMEOUT_SECONDS", 10)) * time.Second,
		Concurrency:     env.MustGetEnvAsInt("CRAWLER_THREADS"),
		QueueSize:       env.GetEnvAsInt("LOCAL_QUEUE_SIZE", defaultQueueSize),
		Store:           st,
		Events:          events,
	}
	return New(settings)
}

// Run seeds the VisitedSet from the store, then starts the Queue Feeder,
// the Worker Pool and the status reporter, blocking until ctx is
// cancelled, at which point it waits for every goroutine to exit before
// returning.
func (c *Crawler) Run(ctx context.Context) error {
	seed, err := c.store.LoadVisitedURLs(ctx)
	if err != nil {
		return err
	}
	c.visited.Seed(seed)
	c.logger.Printf("seeded visited set with %d urls", len(seed))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		(&feeder{crawler: c}).run(ctx)
	}()

	for i := 0; i < c.settings.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			(&worker{id: id, crawler: c}).run(ctx)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.status.run(ctx)
	}()

	<-ctx.Done()
	wg.Wait()
	c.logger.Println("crawler stopped")
	return nil
}

// emitDiscovered publishes the discovered-links event for url on the
// optional event queue. It does nothing when no event queue is configured,
// and logs (without failing) if marshaling or publishing fails.
func (c *Crawler) emitDiscovered(url string, links map[string]string) {
	if c.events == nil {
		return
	}
	linkList := make([]string, 0, len(links))
	for l := range links {
		linkList = append(linkList, l)
	}
	payload, err := json.Marshal(DiscoveredLinks{URL: url, Links: linkList})
	if err != nil {
		c.logger.Printf("marshaling discovered links for %s: %v", url, err)
		return
	}
	if err := c.events.Produce(payload); err != nil {
		c.logger.Printf("publishing discovered links for %s: %v", url, err)
	}
}
