package scraper

import (
	"testing"
)

func TestNextPageURLFromAnchors(t *testing.T) {
	s := newTestScraper(nil, "https://example.com/cat")

	html := `<html><body><div class="pagination">
	<a href="/cat?page=5">Next</a>
	</div></body></html>`

	if got := s.NextPageURL(parseHTML(t, html), 4); got != "https://example.com/cat?page=5" {
		t.Fatalf("got %q", got)
	}
}

func TestNextPageURLRewriting(t *testing.T) {
	cases := []struct {
		base    string
		current int
		want    string
	}{
		{"https://example.com/cat", 1, "https://example.com/cat?page=2"},
		{"https://example.com/cat?sort=new", 1, "https://example.com/cat?sort=new&page=2"},
		{"https://example.com/cat?page=3", 3, "https://example.com/cat?page=4"},
		{"https://tags.literotica.com/romance?page=7&x=1", 2, "https://tags.literotica.com/romance?page=3"},
	}

	for _, tc := range cases {
		s := newTestScraper(nil, tc.base)
		if got := s.NextPageURL(nil, tc.current); got != tc.want {
			t.Fatalf("NextPageURL(nil, %d) for %q = %q, want %q", tc.current, tc.base, got, tc.want)
		}
	}
}

func TestNextPageURLIgnoresNonMatchingAnchors(t *testing.T) {
	s := newTestScraper(nil, "https://example.com/cat")

	// anchor matches a selector but neither says "next" nor points at the
	// following page, so the rewrite fallback applies
	html := `<html><body><a href="/cat?page=9">9</a></body></html>`

	if got := s.NextPageURL(parseHTML(t, html), 1); got != "https://example.com/cat?page=2" {
		t.Fatalf("got %q", got)
	}
}
