// Package crawler containing the crawling logics and utilities to scrape
// remote resources on the web
package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ScrapedPage is the pure result of scraping a single HTML document: the
// metadata and outbound links a worker needs to persist a page row and
// re-enqueue its discoveries.
type ScrapedPage struct {
	Title           string
	FaviconURL      string
	Content         string
	HasH1           bool
	MetaDescription string
	MetaKeywords    string
	MetaThemeColor  string
	MetaOGImage     string
	Links           map[string]string // canonical URL -> domain
}

// deniedExtensions is the fixed suffix deny-list applied to anchor hrefs:
// images, audio, video, fonts, office/text documents, markup/data formats,
// archives and executables are never worth queueing as crawl targets.
var deniedExtensions = []string{
	// images
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".bmp", ".ico",
	".tiff", ".tif", ".heic", ".heif", ".psd", ".eps",
	// audio
	".mp3", ".wav", ".wma", ".wpl", ".mpa", ".ogg", ".aac", ".flac", ".m4a", ".aiff",
	// video
	".mp4", ".avi", ".mov", ".wmv", ".flv", ".mkv", ".webm", ".m4v",
	// fonts
	".woff", ".woff2", ".ttf", ".otf", ".eot",
	// documents
	".pdf", ".doc", ".docx", ".csv", ".log", ".key", ".odp", ".pps", ".ppt", ".pptx", ".dump",
	// data / markup
	".yaml", ".yml", ".xml", ".css", ".js", ".txt", ".sql", ".db", ".rss",
	// archives
	".zip", ".tar", ".tar.gz", ".rar", ".7z", ".arj", ".z", ".rpm", ".deb", ".pkg",
	// executables / disk images
	".bin", ".msi", ".exe", ".sh", ".bat", ".dmg", ".iso", ".toast", ".vcd", ".swf", ".xap",
}

func isDeniedHref(href string) bool {
	for _, ext := range deniedExtensions {
		if strings.HasSuffix(href, ext) {
			return true
		}
	}
	return false
}

// Scrape extracts links and metadata from an HTML document fetched at url
// on domain. It is pure and performs no I/O: any malformed markup that
// goquery cannot parse surfaces as an error for the caller to classify.
func Scrape(domain, pageURL string, html string) (ScrapedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ScrapedPage{}, err
	}

	page := ScrapedPage{
		Links: make(map[string]string),
	}

	page.Title = strings.TrimSpace(doc.Find("title").First().Text())
	page.HasH1 = doc.Find("h1").Length() > 0
	page.MetaDescription = extractMetaContent(doc, "description")
	page.MetaKeywords = extractMetaContent(doc, "keywords")
	page.MetaThemeColor = strings.TrimPrefix(extractMetaContent(doc, "theme-color"), "#")
	if n := len(page.MetaThemeColor); n > 6 {
		page.MetaThemeColor = page.MetaThemeColor[:6]
	}
	page.MetaOGImage = extractMetaContent(doc, "og:image")
	page.FaviconURL = extractFaviconURL(doc, domain)
	page.Content = extractContent(doc)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || isDeniedHref(href) {
			return
		}
		canonical, linkDomain, ok := ResolveHref(pageURL, href)
		if !ok {
			return
		}
		page.Links[canonical] = linkDomain
	})

	return page, nil
}

// extractMetaContent returns the trimmed content attribute of the first
// <meta> tag whose name or property attribute equals key.
func extractMetaContent(doc *goquery.Document, key string) string {
	var content string
	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		name, _ := sel.Attr("name")
		property, _ := sel.Attr("property")
		if name == key || property == key {
			content = strings.TrimSpace(sel.AttrOr("content", ""))
			return false
		}
		return true
	})
	return content
}

// extractFaviconURL resolves the first icon link tag found, accepting an
// already-absolute href as-is and resolving a relative one against the
// domain's root.
func extractFaviconURL(doc *goquery.Document, domain string) string {
	var href string
	doc.Find("link").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rel, _ := sel.Attr("rel")
		if rel == "icon" || rel == "shortcut icon" {
			href, _ = sel.Attr("href")
			return false
		}
		return true
	})
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://" + domain + "/" + strings.TrimPrefix(href, "/")
}

// extractContent concatenates the text of every descendant of <body>,
// excluding script/style/noscript tags. Text belonging to nested elements
// is deliberately collected once per ancestor and once per descendant, a
// duplication inherited unchanged from the page this scraper was ported
// from.
func extractContent(doc *goquery.Document) string {
	var b strings.Builder
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		if tag == "script" || tag == "style" || tag == "noscript" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sel.Text())
	})

	words := ExtractWords(strings.ToLower(b.String()))
	joined := strings.Join(words, " ")
	return safeSlice(joined, 128)
}
