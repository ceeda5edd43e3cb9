package scraper

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ChapterRef is one entry of a series index page. Order is derived from
// the label and used only for sorting.
type ChapterRef struct {
	Label string
	URL   string
	Order int
}

// unknownChapterOrder sorts unparseable chapter labels last; the stable
// sort keeps their discovery order intact.
const unknownChapterOrder = 999

var chapterOrderRe = regexp.MustCompile(`(?i)(?:ch\.?|pt\.?)\s*(\d+)(?:-\d+)?`)

var chapterLinkSelectors = []string{
	`ul.series__works a.br_rj[href*="/s/"]`,
	`div.sl-list a.br_rj[href*="/s/"]`,
	`div.sl-list a[href*="/s/"]`,
	`div.series-nav a[href*="/s/"]`,
}

// FindSeriesLink walks forward from a story page, queue and visited set
// exactly as Walk does, and returns the first series-index link any
// reachable page carries. Empty when the story belongs to no series.
func (s *Scraper) FindSeriesLink(ctx context.Context, storyURL string) string {
	visited := map[string]bool{}
	queue := []string{storyURL}

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

		doc, err := s.Fetch(ctx, u)
		if err != nil {
			continue
		}

		page := s.ExtractPage(doc, u)
		if page.SeriesLink != "" {
			return page.SeriesLink
		}

		for _, next := range page.NextLinks {
			if !visited[next] && !contains(queue, next) {
				queue = append(queue, next)
			}
		}
	}

	return ""
}

// SeriesChapters extracts the chapter list from a fetched series page and
// returns it sorted by parsed chapter order, ascending and stable.
func (s *Scraper) SeriesChapters(doc *goquery.Document, seriesTitle string) []ChapterRef {
	var refs []ChapterRef

	for _, sel := range chapterLinkSelectors {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || !strings.Contains(href, storyPathPrefix) {
				return
			}

			label := strings.TrimSpace(a.Text())
			refs = append(refs, ChapterRef{
				Label: label,
				URL:   resolveURL(s.baseURL, href),
				Order: chapterOrder(label, seriesTitle),
			})
		})
		if len(refs) > 0 {
			break
		}
	}

	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	return refs
}

// chapterOrder parses a "Ch. 3" / "Pt 2" style token out of the label.
// A label matching the series title itself is the opener (order 1);
// anything unparseable sorts last.
func chapterOrder(label, seriesTitle string) int {
	if m := chapterOrderRe.FindStringSubmatch(label); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}

	l := strings.TrimSpace(label)
	t := strings.TrimSpace(seriesTitle)
	if strings.EqualFold(l, t) || strings.HasPrefix(strings.ToLower(l), strings.ToLower(t)) {
		return 1
	}

	return unknownChapterOrder
}
