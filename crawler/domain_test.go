package crawler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/temoto/robotstxt"
)

func TestIsCrawlable(t *testing.T) {
	rules, err := robotstxt.FromString("User-agent: *\nDisallow: /api")
	if err != nil {
		t.Fatalf("robotstxt.FromString failed: %v", err)
	}
	group := rules.FindGroup("Epsilon")

	if isCrawlable(group, "/api/v0") {
		t.Errorf("isCrawlable failed: expected false for /api/v0")
	}
	if !isCrawlable(group, "/hello") {
		t.Errorf("isCrawlable failed: expected true for /hello")
	}
}

func TestIsCrawlableNilGroupAllowsEverything(t *testing.T) {
	if !isCrawlable(nil, "/anything") {
		t.Errorf("isCrawlable failed: expected true when no robots.txt present")
	}
}

func TestDomainRegistryEnforcesCooldown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	clk := NewMockClock()
	registry := NewDomainRegistry("test-agent", server.Client(), clk)

	if d := registry.Decide(host, "http://"+host+"/a"); d != decisionProceed {
		t.Fatalf("Decide failed: expected proceed on first crawl, got %v", d)
	}
	if d := registry.Decide(host, "http://"+host+"/b"); d != decisionRetryLater {
		t.Errorf("Decide failed: expected retry-later inside cooldown window, got %v", d)
	}

	clk.Add(crawlCooldown + 1)
	if d := registry.Decide(host, "http://"+host+"/c"); d != decisionProceed {
		t.Errorf("Decide failed: expected proceed once cooldown elapsed, got %v", d)
	}
}

func TestDomainRegistryRespectsRobotsDisallow(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private"))
	}))
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "https://")
	clk := NewMockClock()
	registry := NewDomainRegistry("test-agent", server.Client(), clk)
	registry.domains[host] = &domainEntry{}

	group, fetched := registry.fetchRobots(host)
	if !fetched {
		t.Fatalf("fetchRobots failed: expected completed round-trip")
	}
	if group == nil {
		t.Fatalf("fetchRobots failed: expected a parsed group")
	}
	if isCrawlable(group, "/private/x") {
		t.Errorf("fetchRobots failed: expected /private/x to be disallowed")
	}
}

func TestDomainRegistryLeavesRobotsFetchUnstampedOnTransportError(t *testing.T) {
	clk := NewMockClock()
	registry := NewDomainRegistry("test-agent", http.DefaultClient, clk)

	_, fetched := registry.fetchRobots("127.0.0.1:1")
	if fetched {
		t.Errorf("fetchRobots failed: expected a transport error to report fetched=false")
	}

	registry.Decide("127.0.0.1:1", "https://127.0.0.1:1/")
	if registry.entry("127.0.0.1:1").haveRobotsFetch {
		t.Errorf("Decide failed: expected lastRobotsFetch left unstamped after a transport error")
	}
}
