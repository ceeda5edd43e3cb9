package scraper

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brogergvhs/storyd/internal/document"
	"github.com/brogergvhs/storyd/internal/ui"
)

type fakeRenderer struct {
	mu   sync.Mutex
	docs []document.Document
}

func (f *fakeRenderer) Render(d document.Document, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, d)
	return os.WriteFile(path, []byte("%stub"), 0644)
}

func singlePageStory(title string) string {
	return `<html><body><h1>` + title + `</h1>
	<div class="story-text">
		<p>First paragraph with enough text in it.</p>
		<p>Second paragraph with enough text in it.</p>
		<p>Third paragraph with enough text in it.</p>
	</div>
	</body></html>`
}

func TestScrapeCategoryEndToEnd(t *testing.T) {
	ps := newPageServer()
	srv := httptest.NewServer(ps)
	defer srv.Close()

	ps.pages["/cat"] = `<html><body>
	<h3><a href="/s/one">Story One</a></h3>
	<h3><a href="/s/two">Story Two</a></h3>
	</body></html>`
	ps.pages["/s/one"] = singlePageStory("Story One")
	ps.pages["/s/two"] = singlePageStory("Story Two")

	out := t.TempDir()
	rend := &fakeRenderer{}

	newScraper := func() *Scraper {
		s := New(Options{
			Client:   srv.Client(),
			Logger:   ui.NewLogger(false),
			Renderer: rend,
			BaseURL:  srv.URL + "/cat",
			Output:   out,
		})
		s.sleep = func(time.Duration) {}
		return s
	}

	newScraper().Run(context.Background(), 1, false)

	if len(rend.docs) != 2 {
		t.Fatalf("expected 2 rendered documents, got %d", len(rend.docs))
	}
	for i, want := range []string{"Story One", "Story Two"} {
		d := rend.docs[i]
		if d.Title != want {
			t.Fatalf("doc %d title = %q, want %q", i, d.Title, want)
		}
		if len(d.Chapters) != 1 || d.Chapters[0].Label != "" {
			t.Fatalf("doc %d should have one unlabeled chapter: %+v", i, d.Chapters)
		}
		if len(d.Chapters[0].Parts) != 3 {
			t.Fatalf("doc %d expected 3 paragraph blocks, got %v", i, d.Chapters[0].Parts)
		}
	}
	for _, name := range []string{"Story One.pdf", "Story Two.pdf"} {
		if !document.Exists(filepath.Join(out, name)) {
			t.Fatalf("missing artifact %s", name)
		}
	}

	// second run: artifacts exist, so no story page is fetched again
	oneHits, twoHits := ps.hitCount("/s/one"), ps.hitCount("/s/two")

	newScraper().Run(context.Background(), 1, false)

	if ps.hitCount("/s/one") != oneHits || ps.hitCount("/s/two") != twoHits {
		t.Fatalf("story pages refetched despite existing artifacts")
	}
	if len(rend.docs) != 2 {
		t.Fatalf("skip run rendered again: %d docs", len(rend.docs))
	}
}

func TestScrapeStorySeriesMode(t *testing.T) {
	ps := newPageServer()
	srv := httptest.NewServer(ps)
	defer srv.Close()

	ps.pages["/s/opener"] = `<html><body><h1>Saga</h1>
	<div class="story-text">
		<p>Opening chapter paragraph, long enough to count.</p>
		<p>Another opening chapter paragraph right here.</p>
	</div>
	<a class="z_t" href="/series/se/9">Series</a>
	</body></html>`

	ps.pages["/series/se/9"] = `<html><body><h1>Saga</h1>
	<ul class="series__works">
	<a class="br_rj" href="/s/c2">Saga Ch. 2</a>
	<a class="br_rj" href="/s/opener">Saga Ch. 1</a>
	</ul></body></html>`

	ps.pages["/s/c2"] = `<html><body><h1>Saga Ch. 2</h1>
	<div class="story-text">
		<p>Second chapter paragraph, long enough to count.</p>
		<p>Another second chapter paragraph right here.</p>
	</div>
	<div class="pagination"><a href="/s/c2?page=2">Next</a></div>
	</body></html>`
	// page two of chapter two, reachable only via the next link
	ps.pagedVariants("/s/c2", map[string]string{
		"page=2": `<html><body><h1>Saga Ch. 2</h1>
	<div class="story-text">
		<p>Continuation paragraph on the second page here.</p>
		<p>Final paragraph on the second page right here.</p>
	</div>
	</body></html>`,
	})

	out := t.TempDir()
	rend := &fakeRenderer{}

	s := New(Options{
		Client:   srv.Client(),
		Logger:   ui.NewLogger(false),
		Renderer: rend,
		BaseURL:  srv.URL,
		Output:   out,
	})
	s.sleep = func(time.Duration) {}
	s.maxRetries = 1

	if !s.ScrapeStory(context.Background(), "Saga", srv.URL+"/s/opener", true) {
		t.Fatal("series scrape failed")
	}

	if len(rend.docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(rend.docs))
	}
	d := rend.docs[0]
	if d.Title != "Saga" {
		t.Fatalf("title = %q", d.Title)
	}
	if len(d.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %+v", d.Chapters)
	}
	if d.Chapters[0].Label != "Saga Ch. 1" || d.Chapters[0].Number != 1 {
		t.Fatalf("chapter 1 wrong: %+v", d.Chapters[0])
	}
	if d.Chapters[1].Label != "Saga Ch. 2" || d.Chapters[1].Number != 2 {
		t.Fatalf("chapter 2 wrong: %+v", d.Chapters[1])
	}

	// chapter two spans two pages: marker between the parts
	parts := d.Chapters[1].Parts
	foundMarker := false
	for _, p := range parts {
		if p == document.PartMarker(2) {
			foundMarker = true
		}
	}
	if !foundMarker {
		t.Fatalf("expected part marker in chapter 2 parts: %v", parts)
	}
}

func TestScrapeSingleStoryFailsWithoutContent(t *testing.T) {
	ps := newPageServer()
	srv := httptest.NewServer(ps)
	defer srv.Close()

	ps.pages["/s/empty"] = `<html><body><h1>Empty Shell</h1></body></html>`

	out := t.TempDir()
	rend := &fakeRenderer{}

	s := New(Options{
		Client:   srv.Client(),
		Logger:   ui.NewLogger(false),
		Renderer: rend,
		BaseURL:  srv.URL,
		Output:   out,
	})
	s.sleep = func(time.Duration) {}

	if s.ScrapeStory(context.Background(), "Empty Shell", srv.URL+"/s/empty", false) {
		t.Fatal("expected failure for a story with no paragraphs")
	}
	if len(rend.docs) != 0 {
		t.Fatalf("no artifact should be rendered, got %d", len(rend.docs))
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("output dir should stay empty, found %v", entries)
	}
}
