package crawler

import "testing"

func TestCanonicalize(t *testing.T) {
	canonical, domain, ok := Canonicalize("https://google.com/about#cc?a=0")
	if !ok {
		t.Fatalf("Canonicalize failed: expected ok got not-ok")
	}
	if canonical != "https://google.com/about" {
		t.Errorf("Canonicalize failed: expected https://google.com/about got %s", canonical)
	}
	if domain != "google.com" {
		t.Errorf("Canonicalize failed: expected google.com got %s", domain)
	}
}

func TestCanonicalizeRejectsHostless(t *testing.T) {
	if _, _, ok := Canonicalize("google.com"); ok {
		t.Errorf("Canonicalize failed: expected not-ok for schemeless input")
	}
}

func TestCanonicalizeRejectsNonHTTPScheme(t *testing.T) {
	if _, _, ok := Canonicalize("sftp://example.com"); ok {
		t.Errorf("Canonicalize failed: expected not-ok for sftp scheme")
	}
}

func TestCanonicalizeRejectsIPLiteral(t *testing.T) {
	if _, _, ok := Canonicalize("http://127.0.0.1/a"); ok {
		t.Errorf("Canonicalize failed: expected not-ok for ip-literal host")
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	once, _, ok := Canonicalize("https://example.com/path?x=1#y")
	if !ok {
		t.Fatalf("Canonicalize failed: expected ok")
	}
	twice, _, ok := Canonicalize(once)
	if !ok {
		t.Fatalf("Canonicalize failed: expected ok on reapplication")
	}
	if once != twice {
		t.Errorf("Canonicalize failed: not idempotent, %s != %s", once, twice)
	}
}

func TestResolveHrefRelative(t *testing.T) {
	canonical, domain, ok := ResolveHref("https://sub.google.com", "hello")
	if !ok {
		t.Fatalf("ResolveHref failed: expected ok")
	}
	if canonical != "https://sub.google.com/hello" {
		t.Errorf("ResolveHref failed: expected https://sub.google.com/hello got %s", canonical)
	}
	if domain != "sub.google.com" {
		t.Errorf("ResolveHref failed: expected sub.google.com got %s", domain)
	}
}

func TestResolveHrefAlreadyAbsolute(t *testing.T) {
	canonical, domain, ok := ResolveHref("https://sub.google.com", "http://other.com/x")
	if !ok {
		t.Fatalf("ResolveHref failed: expected ok")
	}
	if canonical != "http://other.com/x" {
		t.Errorf("ResolveHref failed: expected http://other.com/x got %s", canonical)
	}
	if domain != "other.com" {
		t.Errorf("ResolveHref failed: expected other.com got %s", domain)
	}
}
