package scraper

import (
	"context"
)

// Part is the paragraph contribution of one fetched page within a
// chapter's next-link chain. Index is 1-based per URL popped off the
// traversal queue, so a page that fails to fetch still consumes an index
// and leaves a visible gap in part numbering.
type Part struct {
	Index      int
	Paragraphs []string
}

// Walk follows next-page links breadth-first from seed and returns the
// paragraph stream in discovery order. The visited set is scoped to this
// call, so each URL is fetched at most once even when the discovered
// link graph is cyclic.
func (s *Scraper) Walk(ctx context.Context, seed string) []Part {
	return s.walkFrom(ctx, seed, nil)
}

// walkFrom is Walk with an optional pre-extracted first page, so callers
// that already fetched the seed (for title or skip checks) do not fetch
// it a second time.
func (s *Scraper) walkFrom(ctx context.Context, seed string, first *Page) []Part {
	visited := map[string]bool{}
	queue := []string{seed}

	var parts []Part
	index := 0

	for len(queue) > 0 {
		if ctx.Err() != nil {
			break
		}

		u := queue[0]
		queue = queue[1:]
		if visited[u] {
			continue
		}
		visited[u] = true
		index++

		var page Page
		if first != nil && u == seed {
			page = *first
		} else {
			doc, err := s.Fetch(ctx, u)
			if err != nil {
				// the page's contribution is lost, traversal continues
				continue
			}
			page = s.ExtractPage(doc, u)
		}

		if len(page.Paragraphs) > 0 {
			parts = append(parts, Part{Index: index, Paragraphs: page.Paragraphs})
			s.log.Infof("    part %d ok\n", index)
		}

		for _, next := range page.NextLinks {
			if !visited[next] && !contains(queue, next) {
				queue = append(queue, next)
			}
		}
	}

	return parts
}

func contains(queue []string, u string) bool {
	for _, q := range queue {
		if q == u {
			return true
		}
	}
	return false
}
