package crawler

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const (
	robotsRefreshInterval = 24 * time.Hour
	crawlCooldown         = 10 * time.Second
)

// decision is the outcome of a politeness check against a DomainRegistry.
type decision int

const (
	decisionProceed decision = iota
	decisionRetryLater
	decisionDisallowed
)

// domainEntry is the per-domain politeness state: cached robots.txt group,
// and the instants of the last robots fetch and last successful crawl.
type domainEntry struct {
	mu               sync.Mutex
	robots           *robotstxt.Group
	lastRobotsFetch  time.Time
	lastCrawl        time.Time
	haveRobots       bool
	haveLastCrawl    bool
	haveRobotsFetch  bool
}

// DomainRegistry is the shared, concurrency-safe map of per-domain
// politeness state consulted by every worker before a fetch.
type DomainRegistry struct {
	userAgent string
	clock     Clock
	client    *http.Client

	mu      sync.Mutex
	domains map[string]*domainEntry
}

// NewDomainRegistry creates a registry that fetches robots.txt with client
// and stamps state using clock.
func NewDomainRegistry(userAgent string, client *http.Client, clk Clock) *DomainRegistry {
	return &DomainRegistry{
		userAgent: userAgent,
		clock:     clk,
		client:    client,
		domains:   make(map[string]*domainEntry),
	}
}

func (r *DomainRegistry) entry(domain string) *domainEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.domains[domain]
	if !ok {
		e = &domainEntry{}
		r.domains[domain] = e
	}
	return e
}

// Decide evaluates the politeness rules for a request to crawlURL on
// domain: refreshing the cached robots.txt if stale (without ever holding
// the entry's lock across the network round-trip), checking the allow/deny
// verdict, and enforcing the per-domain crawl cooldown.
func (r *DomainRegistry) Decide(domain, crawlURL string) decision {
	e := r.entry(domain)

	e.mu.Lock()
	needsRefresh := !e.haveRobotsFetch || r.clock.Now().Sub(e.lastRobotsFetch) >= robotsRefreshInterval
	e.mu.Unlock()

	if needsRefresh {
		group, fetched := r.fetchRobots(domain)
		e.mu.Lock()
		if fetched {
			e.robots = group
			e.haveRobots = group != nil
			e.lastRobotsFetch = r.clock.Now()
			e.haveRobotsFetch = true
		}
		e.mu.Unlock()
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.haveRobots && e.robots != nil && !e.robots.Test(pathOf(crawlURL)) {
		return decisionDisallowed
	}

	now := r.clock.Now()
	if e.haveLastCrawl && now.Sub(e.lastCrawl) < crawlCooldown {
		return decisionRetryLater
	}
	e.lastCrawl = now
	e.haveLastCrawl = true
	return decisionProceed
}

// fetchRobots performs the robots.txt GET outside of any entry lock. The
// boolean return reports whether the round-trip completed at all (true
// even when no usable group resulted); a transport-level failure reports
// false so the caller leaves lastRobotsFetch untouched and retries on the
// next task.
func (r *DomainRegistry) fetchRobots(domain string) (*robotstxt.Group, bool) {
	target := fmt.Sprintf("https://%s/robots.txt", domain)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, false
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, true
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true
	}
	if len(body) > 0 && strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
		// The origin served HTML instead of a robots.txt, treat as absent.
		return nil, true
	}

	parsed, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, true
	}
	return parsed.FindGroup(r.userAgent), true
}

// isCrawlable reports whether path is allowed by group under the registry's
// user-agent identity. A nil group (no usable robots.txt) allows everything.
func isCrawlable(group *robotstxt.Group, path string) bool {
	if group == nil {
		return true
	}
	return group.Test(path)
}

func pathOf(rawURL string) string {
	idx := strings.Index(rawURL, "://")
	if idx < 0 {
		return rawURL
	}
	rest := rawURL[idx+3:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		return "/"
	}
	return rest[slash:]
}
