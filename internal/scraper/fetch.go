package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrBlockedHost marks URLs whose host is on the blocklist. They are
// skipped silently, without a network call.
var ErrBlockedHost = errors.New("blocked host")

// ExhaustedError is returned once every retry attempt for a URL has
// failed. It wraps the error of the last attempt.
type ExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d tries: %v", e.URL, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Fetch retrieves one page as a parsed DOM. Every attempt is preceded by
// a randomized delay: uniform 1-3s before the first (politeness pacing),
// uniform [2^k, 2^(k+1)] seconds before retry k (backoff with jitter).
// Non-2xx responses count as failed attempts.
func (s *Scraper) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if host, blocked := s.blockedHost(pageURL); blocked {
		return nil, fmt.Errorf("%s: %w", host, ErrBlockedHost)
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		s.sleep(fetchDelay(attempt))

		doc, err := s.fetchOnce(ctx, pageURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if attempt == s.maxRetries {
			s.log.Errorf("%s failed after %d tries: %v\n", pageURL, s.maxRetries+1, err)
		} else {
			s.log.Warnf("%s attempt %d: %v\n", pageURL, attempt+1, err)
		}
	}

	return nil, &ExhaustedError{URL: pageURL, Attempts: s.maxRetries + 1, Err: lastErr}
}

func (s *Scraper) fetchOnce(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	cr := &countingReader{r: resp.Body}
	doc, err := goquery.NewDocumentFromReader(cr)
	if err != nil {
		return nil, err
	}

	s.stats.PagesFetched.Add(1)
	s.stats.BytesFetched.Add(cr.n)

	return doc, nil
}

func (s *Scraper) blockedHost(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	for _, b := range s.blockedHosts {
		if b != "" && strings.Contains(host, b) {
			return host, true
		}
	}

	return "", false
}

func fetchDelay(attempt int) time.Duration {
	if attempt == 0 {
		return jitter(1.0, 3.0)
	}
	return jitter(math.Pow(2, float64(attempt)), math.Pow(2, float64(attempt+1)))
}

func jitter(lo, hi float64) time.Duration {
	return time.Duration((lo + rand.Float64()*(hi-lo)) * float64(time.Second))
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
