package candidate

import "testing"

func TestCanonicalURL_StripsTrackingParams(t *testing.T) {
	t.Parallel()

	got := CanonicalURL("https://example.org/post?utm_source=a&utm_medium=b&ref=r&id=1&gclid=foo")
	if got != "https://example.org/post?id=1" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestCanonicalURL_PreservesParamOrderAndDropsFragment(t *testing.T) {
	t.Parallel()

	got := CanonicalURL("https://example.org/a?b=2&utm_campaign=x&a=1#section")
	if got != "https://example.org/a?b=2&a=1" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestCanonicalURL_NoQuery(t *testing.T) {
	t.Parallel()

	if got := CanonicalURL("https://example.org/post"); got != "https://example.org/post" {
		t.Fatalf("unexpected canonical url: %q", got)
	}
}

func TestCanonicalURL_MalformedInput(t *testing.T) {
	t.Parallel()

	if got := CanonicalURL("  ::not a url::  "); got != "::not a url::" {
		t.Fatalf("expected best-effort trimmed passthrough, got %q", got)
	}
}
