package crawler

import "testing"

func TestSafeSliceShorterThanLimit(t *testing.T) {
	if got := safeSlice("hello", 10); got != "hello" {
		t.Errorf("safeSlice failed: expected hello got %s", got)
	}
}

func TestSafeSliceExactBoundary(t *testing.T) {
	if got := safeSlice("hello", 5); got != "hello" {
		t.Errorf("safeSlice failed: expected hello got %s", got)
	}
}

func TestSafeSliceTruncatesASCII(t *testing.T) {
	if got := safeSlice("hello world", 5); got != "hello" {
		t.Errorf("safeSlice failed: expected hello got %s", got)
	}
}

func TestSafeSliceAvoidsSplittingMultibyteRune(t *testing.T) {
	// "café" is c,a,f,é where é is 2 bytes (0xC3 0xA9); byte length is 5.
	s := "café"
	if got := safeSlice(s, 4); got != "caf" {
		t.Errorf("safeSlice failed: expected caf got %q", got)
	}
}

func TestSafeSliceZero(t *testing.T) {
	if got := safeSlice("hello", 0); got != "" {
		t.Errorf("safeSlice failed: expected empty got %q", got)
	}
}
