package crawler

import (
	"net"
	"strings"
	"net/url"
)

// Canonicalize reduces an absolute URL to its canonical crawling form:
// query and fragment stripped, scheme restricted to http/https, and a
// registrable (non-IP-literal) host required. It reports ok=false for any
// URL that cannot serve as a crawl target.
func Canonicalize(raw string) (canonical string, domain string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", false
	}
	return canonicalizeParsed(u)
}

func canonicalizeParsed(u *url.URL) (string, string, bool) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", false
	}
	host := u.Hostname()
	if host == "" {
		return "", "", false
	}
	if net.ParseIP(host) != nil {
		return "", "", false
	}
	clean := &url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   u.Path,
	}
	return clean.String(), host, true
}

// ResolveHref resolves an anchor/link href found on a page at pageURL into a
// canonical URL. Hrefs that already look absolute (begin with "http") are
// canonicalized directly; everything else is resolved against the page's
// own URL first.
func ResolveHref(pageURL string, href string) (canonical string, domain string, ok bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", "", false
	}
	if strings.HasPrefix(href, "http") {
		return Canonicalize(href)
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", "", false
	}
	rel, err := url.Parse(href)
	if err != nil {
		return "", "", false
	}
	resolved := base.ResolveReference(rel)
	return canonicalizeParsed(resolved)
}
