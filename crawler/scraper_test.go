package crawler

import "testing"

const sampleHTML = `
<html>
<head>
	<title> Example Domain </title>
	<meta name="description" content="An example description that is long enough to earn the length bonus in the scoring formula, padded with more words.">
	<meta name="keywords" content="example, domain">
	<meta property="og:image" content="https://example.com/og.png">
	<link rel="icon" href="/favicon.ico">
</head>
<body>
	<h1>Example Domain</h1>
	<p>This domain is for use in illustrative examples.</p>
	<a href="https://example.com/more">More information</a>
	<a href="/more.pdf">Document</a>
	<a href="/about">About</a>
</body>
</html>`

func TestScrapeExtractsMetadata(t *testing.T) {
	page, err := Scrape("example.com", "https://example.com/", sampleHTML)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	if page.Title != "Example Domain" {
		t.Errorf("Scrape failed: expected title %q got %q", "Example Domain", page.Title)
	}
	if !page.HasH1 {
		t.Errorf("Scrape failed: expected HasH1 true")
	}
	if page.MetaOGImage != "https://example.com/og.png" {
		t.Errorf("Scrape failed: expected og:image extracted, got %q", page.MetaOGImage)
	}
	if page.FaviconURL != "https://example.com/favicon.ico" {
		t.Errorf("Scrape failed: expected resolved favicon, got %q", page.FaviconURL)
	}
}

func TestScrapeFiltersDeniedExtensions(t *testing.T) {
	page, err := Scrape("example.com", "https://example.com/", sampleHTML)
	if err != nil {
		t.Fatalf("Scrape failed: %v", err)
	}
	for link := range page.Links {
		if link == "https://example.com/more.pdf" {
			t.Errorf("Scrape failed: expected .pdf link to be filtered out, found %s", link)
		}
	}
	if _, ok := page.Links["https://example.com/more"]; !ok {
		t.Errorf("Scrape failed: expected https://example.com/more to be present")
	}
	if _, ok := page.Links["https://example.com/about"]; !ok {
		t.Errorf("Scrape failed: expected https://example.com/about to be present")
	}
}

func TestScrapeMalformedHTMLDoesNotPanic(t *testing.T) {
	if _, err := Scrape("example.com", "https://example.com/", "<html><body><p>unterminated"); err != nil {
		t.Errorf("Scrape failed: expected goquery to tolerate unclosed tags, got %v", err)
	}
}
