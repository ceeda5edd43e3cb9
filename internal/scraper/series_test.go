package scraper

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestChapterOrder(t *testing.T) {
	cases := []struct {
		label string
		title string
		want  int
	}{
		{"My Story Ch. 03", "My Story", 3},
		{"My Story Pt 2", "My Story", 2},
		{"my story ch.7", "My Story", 7},
		{"My Story", "My Story", 1},
		{"My Story: The Finale", "My Story", 1},
		{"Bonus Interlude", "My Story", unknownChapterOrder},
		{"", "My Story", unknownChapterOrder},
	}

	for _, tc := range cases {
		if got := chapterOrder(tc.label, tc.title); got != tc.want {
			t.Fatalf("chapterOrder(%q, %q) = %d, want %d", tc.label, tc.title, got, tc.want)
		}
	}
}

func TestSeriesChaptersStableSort(t *testing.T) {
	s := newTestScraper(nil, "https://example.com")

	// discovery order carries orders [999, 2, 999, 1]; the stable sort
	// must keep the two unknowns in discovery order behind the numbered
	// chapters
	html := `<html><body><ul class="series__works">
	<a class="br_rj" href="/s/bonus-one">Bonus One</a>
	<a class="br_rj" href="/s/ch-two">Saga Ch. 2</a>
	<a class="br_rj" href="/s/bonus-two">Bonus Two</a>
	<a class="br_rj" href="/s/ch-one">Saga Ch. 1</a>
	</ul></body></html>`

	refs := s.SeriesChapters(parseHTML(t, html), "Saga")

	wantLabels := []string{"Saga Ch. 1", "Saga Ch. 2", "Bonus One", "Bonus Two"}
	if len(refs) != len(wantLabels) {
		t.Fatalf("expected %d chapters, got %+v", len(wantLabels), refs)
	}
	for i, want := range wantLabels {
		if refs[i].Label != want {
			t.Fatalf("position %d = %q, want %q (refs %+v)", i, refs[i].Label, want, refs)
		}
	}
	if refs[0].URL != "https://example.com/s/ch-one" {
		t.Fatalf("unexpected chapter URL %q", refs[0].URL)
	}
}

func TestSeriesChaptersSelectorCascade(t *testing.T) {
	s := newTestScraper(nil, "https://example.com")

	// no series__works list; the sl-list fallback strategy applies
	html := `<html><body><div class="sl-list">
	<a href="/s/part-one">Tale Pt. 1</a>
	<a href="/s/part-two">Tale Pt. 2</a>
	<a href="/u/author">author profile</a>
	</div></body></html>`

	refs := s.SeriesChapters(parseHTML(t, html), "Tale")
	if len(refs) != 2 {
		t.Fatalf("expected 2 chapters, got %+v", refs)
	}
	if refs[0].Order != 1 || refs[1].Order != 2 {
		t.Fatalf("unexpected orders: %+v", refs)
	}
}

func TestFindSeriesLinkShortCircuits(t *testing.T) {
	ps := newPageServer()
	srv := httptest.NewServer(ps)
	defer srv.Close()

	ps.pages["/s/p1"] = storyPage("Part One", "/s/p2?page=2")
	ps.pages["/s/p2"] = `<html><body>
	<h1>Part Two</h1>
	<div class="story-text"><p>Enough text to count as a body here.</p><p>And a second paragraph for good measure.</p></div>
	<a class="z_t" href="/series/se/42">Series</a>
	<div class="pagination"><a href="/s/p3?page=3">Next</a></div>
	</body></html>`
	ps.pages["/s/p3"] = storyPage("Part Three")

	s := newTestScraper(srv.Client(), srv.URL)
	s.maxRetries = 1

	got := s.FindSeriesLink(context.Background(), srv.URL+"/s/p1")
	if got != srv.URL+"/series/se/42" {
		t.Fatalf("got %q", got)
	}
	// the walk stops at the page carrying the series link
	if n := ps.hitCount("/s/p3"); n != 0 {
		t.Fatalf("traversal went past the series link, /s/p3 fetched %d times", n)
	}
}

func TestFindSeriesLinkAbsentOnLinearChain(t *testing.T) {
	ps := newPageServer()
	srv := httptest.NewServer(ps)
	defer srv.Close()

	ps.pages["/s/only"] = storyPage("Standalone")

	s := newTestScraper(srv.Client(), srv.URL)

	if got := s.FindSeriesLink(context.Background(), srv.URL+"/s/only"); got != "" {
		t.Fatalf("expected no series link, got %q", got)
	}
}
