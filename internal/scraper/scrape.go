package scraper

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/storyd/internal/document"
	"github.com/brogergvhs/storyd/internal/ui"
)

// Run processes the configured base URL: story pages (recognized by the
// story path pattern) go through single-story scraping with series
// discovery, anything else is treated as a category listing.
func (s *Scraper) Run(ctx context.Context, maxPages int, fullSeries bool) {
	if strings.Contains(s.baseURL, storyPathPrefix) {
		s.log.Infof("Single: %s\n", s.baseURL)
		s.stats.StoriesFound.Add(1)
		if s.ScrapeStory(ctx, "Unknown", s.baseURL, fullSeries) {
			s.stats.StoriesSaved.Add(1)
		}
		return
	}

	s.ScrapeCategory(ctx, maxPages, fullSeries)
}

// ScrapeCategory iterates listing pages up to maxPages and scrapes every
// discovered story. A failed story never aborts the crawl; it is logged
// and the loop moves on.
func (s *Scraper) ScrapeCategory(ctx context.Context, maxPages int, fullSeries bool) {
	s.log.Infof("Category: %s\n", s.baseURL)

	visitedPages := map[string]bool{}
	seenStories := map[string]bool{}
	found, saved := 0, 0

	var prevDoc *goquery.Document

	for cur := 1; cur <= maxPages; cur++ {
		if ctx.Err() != nil {
			break
		}

		pageURL := s.baseURL
		if cur > 1 {
			pageURL = s.NextPageURL(prevDoc, cur-1)
		}
		if pageURL == "" || visitedPages[pageURL] {
			break
		}
		visitedPages[pageURL] = true

		doc, err := s.Fetch(ctx, pageURL)
		if err != nil {
			break
		}
		prevDoc = doc

		stories := s.ExtractStoryLinks(doc)
		if len(stories) == 0 {
			break
		}
		s.log.Infof("%d stories on page %d\n", len(stories), cur)

		for i, st := range stories {
			if ctx.Err() != nil {
				break
			}
			if seenStories[st.URL] {
				continue
			}
			seenStories[st.URL] = true
			found++

			s.log.Infof("Story %d/%d\n", i+1, len(stories))
			if s.ScrapeStory(ctx, st.Title, st.URL, fullSeries) {
				saved++
			}
		}
	}

	s.stats.StoriesFound.Add(int64(found))
	s.stats.StoriesSaved.Add(int64(saved))
	s.log.Infof("Done! found:%d saved:%d\n", found, saved)
}

// ScrapeStory reconstructs one story and renders it. With fullSeries set
// it first walks the story's page chain looking for a series index; when
// one exists the whole series becomes the document, otherwise the story
// is scraped standalone.
func (s *Scraper) ScrapeStory(ctx context.Context, storyTitle, storyURL string, fullSeries bool) bool {
	s.log.Infof("Story: %s\n", storyTitle)

	// idempotent resume: the artifact for the best-known title already
	// exists, no traversal needed. The resolved title is re-checked later
	// since it may differ from the listing's link text.
	if out := document.OutputPath(s.output, storyTitle); document.Exists(out) {
		s.log.Infof("[SKIP] %s exists\n", filepath.Base(out))
		return true
	}

	if fullSeries {
		if seriesURL := s.FindSeriesLink(ctx, storyURL); seriesURL != "" {
			if handled, saved := s.scrapeSeries(ctx, seriesURL, storyTitle); handled {
				return saved
			}
		}
	}

	return s.scrapeSingleStory(ctx, storyTitle, storyURL)
}

// scrapeSeries builds a multi-chapter document from a series index page.
// handled is false when the series route produced nothing usable and the
// caller should fall back to single-story mode.
func (s *Scraper) scrapeSeries(ctx context.Context, seriesURL, fallbackTitle string) (handled, saved bool) {
	s.log.Infof("series found, scraping series for %s\n", fallbackTitle)

	doc, err := s.Fetch(ctx, seriesURL)
	if err != nil {
		return false, false
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = fallbackTitle
	}

	outPath := document.OutputPath(s.output, title)
	if document.Exists(outPath) {
		s.log.Infof("[SKIP] %s exists\n", filepath.Base(outPath))
		return true, true
	}

	refs := s.SeriesChapters(doc, title)
	if len(refs) == 0 {
		return false, false
	}

	var handle *ui.ProgressHandle
	if s.progress != nil {
		handle = s.progress.Register(document.SanitizeTitle(title))
		handle.SetTotal(len(refs))
	}

	chapters := make([]document.Chapter, 0, len(refs))
	for i, ref := range refs {
		s.log.Infof("  %s\n", ref.Label)

		parts := s.Walk(ctx, ref.URL)
		chapters = append(chapters, document.Chapter{
			Number: i + 1,
			Label:  ref.Label,
			Parts:  partsToBlocks(parts),
		})

		s.stats.Chapters.Add(1)
		if handle != nil {
			handle.Increment()
		}
	}
	if handle != nil {
		handle.MarkDone()
	}

	d := document.Assemble(title, chapters)
	if d.Empty() {
		s.log.Errorf("no content for series %s\n", title)
		return false, false
	}

	if err := s.render.Render(d, outPath); err != nil {
		s.log.Errorf("render failed for %s: %v\n", title, err)
		return true, false
	}

	s.log.Infof("Done: %s saved\n", title)
	return true, true
}

func (s *Scraper) scrapeSingleStory(ctx context.Context, storyTitle, storyURL string) bool {
	s.log.Infof("  single story mode for %s\n", storyTitle)

	doc, err := s.Fetch(ctx, storyURL)
	if err != nil {
		return false
	}

	page := s.ExtractPage(doc, storyURL)
	title := page.Title
	if title == "" {
		title = storyTitle
	}

	outPath := document.OutputPath(s.output, title)
	if document.Exists(outPath) {
		s.log.Infof("[SKIP] %s exists\n", filepath.Base(outPath))
		return true
	}

	parts := s.walkFrom(ctx, storyURL, &page)
	blocks := partsToBlocks(parts)
	if len(blocks) == 0 {
		s.log.Errorf("no content for %s\n", storyTitle)
		return false
	}

	d := document.Assemble(title, []document.Chapter{{Number: 1, Parts: blocks}})
	if err := s.render.Render(d, outPath); err != nil {
		s.log.Errorf("render failed for %s: %v\n", title, err)
		return false
	}

	s.log.Infof("Done: %s saved\n", title)
	return true
}

// partsToBlocks flattens walked parts into a chapter's entry stream,
// inserting the part-boundary marker ahead of every page after the first.
func partsToBlocks(parts []Part) []string {
	var out []string
	for _, p := range parts {
		if p.Index > 1 {
			out = append(out, document.PartMarker(p.Index))
		}
		out = append(out, p.Paragraphs...)
	}
	return out
}
