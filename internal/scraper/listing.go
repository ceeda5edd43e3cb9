package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var nextPageSelectors = []string{
	`a[href*="page="]`, ".pagination .next", `a[rel="next"]`, ".page-numbers.next",
}

var pageParamRe = regexp.MustCompile(`page=\d+`)

// tagListingPrefix: tag listings keep pagination state only in the query
// string, so their next-page URL is always rebuilt from the bare path.
const tagListingPrefix = "https://tags.literotica.com/"

// NextPageURL derives the URL of the listing page after current. It
// prefers pagination anchors found on the current page and falls back to
// rewriting or appending the page query parameter on the base URL.
func (s *Scraper) NextPageURL(doc *goquery.Document, current int) string {
	if doc != nil {
		for _, sel := range nextPageSelectors {
			found := ""
			doc.Find(sel).EachWithBreak(func(_ int, a *goquery.Selection) bool {
				href, ok := a.Attr("href")
				if !ok || href == "" {
					return true
				}

				text := strings.ToLower(a.Text())
				if strings.Contains(text, "next") ||
					strings.Contains(href, fmt.Sprintf("page=%d", current+1)) {
					found = resolveURL(s.baseURL, href)
					return false
				}
				return true
			})
			if found != "" {
				return found
			}
		}
	}

	var next string
	switch {
	case strings.Contains(s.baseURL, "page="):
		next = pageParamRe.ReplaceAllString(s.baseURL, fmt.Sprintf("page=%d", current+1))
	case strings.Contains(s.baseURL, "?"):
		next = fmt.Sprintf("%s&page=%d", s.baseURL, current+1)
	default:
		next = fmt.Sprintf("%s?page=%d", s.baseURL, current+1)
	}

	if strings.HasPrefix(s.baseURL, tagListingPrefix) {
		next = fmt.Sprintf("%s?page=%d", strings.SplitN(s.baseURL, "?", 2)[0], current+1)
	}

	return next
}
