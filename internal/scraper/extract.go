package scraper

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// Page is the structural content recovered from one fetched page.
type Page struct {
	Title      string
	Paragraphs []string
	NextLinks  []string
	SeriesLink string
}

// StoryLink is one entry on a category/listing page.
type StoryLink struct {
	Title string
	URL   string
}

// storyPathPrefix marks story pages across this family of sites; anchors
// under it inside body text are "related stories" blocks, not prose.
const storyPathPrefix = "/s/"

// Selector cascades, ordered most-specific template first. The first
// selector that yields a usable result wins; later entries are fallbacks
// for older or rebranded site templates.
var (
	titleSelectors = []string{
		"h1", "h1.headline", "h1.story-title", "h1.title",
		".story-title", ".title", "h2.entry-title", "header h1",
		"div.story-header h1", `[class*="title"] h1`,
		"h1.storyname", "div.story-header h2",
	}

	bodySelectors = []string{
		"div.story-text p", ".story-content p", ".story-body p",
		"#story p", `div[class*="story"] p`, ".content p",
		".entry-content p", "div.content p", "article p",
		"#story-text p", ".post-content p", "div.text p",
		"main p", "p",
	}

	nextLinkSelectors = []string{
		`a[href*="chapter"]`, `a[href*="page"]`,
		".next-chapter a", `.pagination a[href*="page"]`,
	}

	storyLinkSelectors = []string{
		`a[href*="/s/"]`, `h3 a[href*="/s/"]`, `h4 a[href*="/s/"]`,
		".story-title a", "div.story-list h3 a",
		`div.content-item a[href*="story"]`,
		"article h2 a", "h3 a, h4 a, h2 a",
	}
)

const seriesLinkSelector = `a.z_t[href*="/series/se/"]`

// ExtractPage recovers title, body paragraphs, next-page links and an
// optional series link from a parsed page.
func (s *Scraper) ExtractPage(doc *goquery.Document, pageURL string) Page {
	p := Page{
		Title:      extractTitle(doc),
		Paragraphs: extractParagraphs(doc),
		NextLinks:  extractNextLinks(doc, pageURL),
		SeriesLink: s.extractSeriesLink(doc),
	}

	if p.Title == "" {
		s.log.Warnf("no title found on %s\n", pageURL)
	}

	return p
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if el := doc.Find(sel).First(); el.Length() > 0 {
			return strings.TrimSpace(el.Text())
		}
	}
	return ""
}

// extractParagraphs tries each container strategy in order; a strategy
// wins only when it yields more than one qualifying paragraph, which
// filters out templates where the selector matches a stray element.
func extractParagraphs(doc *goquery.Document) []string {
	for _, sel := range bodySelectors {
		matches := doc.Find(sel)
		if matches.Length() == 0 {
			continue
		}

		var valid []string
		matches.Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len(text) > 10 && !hasStoryLink(p) {
				valid = append(valid, text)
			}
		})

		if len(valid) > 1 {
			return valid
		}
	}

	// last resort: any paragraph-like element with substantial text
	var out []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > 20 {
			out = append(out, text)
		}
	})

	return out
}

func hasStoryLink(p *goquery.Selection) bool {
	found := false
	p.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.HasPrefix(strings.ToLower(href), storyPathPrefix) {
			found = true
			return false
		}
		return true
	})
	return found
}

// extractNextLinks scans every pagination strategy; duplicates are left in
// place, the traversal's visited set is responsible for collapsing them.
func extractNextLinks(doc *goquery.Document, pageURL string) []string {
	var out []string
	for _, sel := range nextLinkSelectors {
		doc.Find(sel).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || href == "" {
				return
			}

			text := strings.TrimSpace(a.Text())
			if strings.Contains(strings.ToLower(text), "next") ||
				strings.Contains(strings.ToLower(href), "chapter") ||
				isAllDigits(text) {
				out = append(out, resolveURL(pageURL, href))
			}
		})
	}
	return out
}

func (s *Scraper) extractSeriesLink(doc *goquery.Document) string {
	el := doc.Find(seriesLinkSelector).First()
	if el.Length() == 0 {
		return ""
	}

	href, ok := el.Attr("href")
	if !ok || href == "" {
		return ""
	}

	return resolveURL(s.baseURL, href)
}

// ExtractStoryLinks pulls story entries off a listing page, deduplicated
// by URL in document order.
func (s *Scraper) ExtractStoryLinks(doc *goquery.Document) []StoryLink {
	var found []StoryLink
	for _, sel := range storyLinkSelectors {
		links := doc.Find(sel)
		if links.Length() == 0 {
			continue
		}

		links.Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if !ok || href == "" {
				return
			}

			title := strings.TrimSpace(a.Text())
			if title == "" {
				title = "Untitled"
			}

			found = append(found, StoryLink{Title: title, URL: resolveURL(s.baseURL, href)})
		})
		break
	}

	seen := map[string]bool{}
	uniq := make([]StoryLink, 0, len(found))
	for _, l := range found {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		uniq = append(uniq, l)
	}

	return uniq
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func resolveURL(baseURL, href string) string {
	if href == "" {
		return baseURL
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(baseURL)
	if err != nil {
		return href
	}

	return b.ResolveReference(u).String()
}
