// Package scraper implements the crawl pipeline for serialized story
// sites: rate-limited fetching, heuristic DOM extraction across site
// templates, cycle-safe traversal of next-page links, series resolution
// and category pagination.
package scraper

import (
	"net/http"
	"time"

	"github.com/brogergvhs/storyd/internal/document"
	"github.com/brogergvhs/storyd/internal/ui"
)

// Renderer turns an assembled document into the output artifact.
type Renderer interface {
	Render(doc document.Document, path string) error
}

type Scraper struct {
	client   *http.Client
	log      *ui.Logger
	render   Renderer
	progress *ui.MPBProgressManager
	stats    *ui.Stats

	baseURL      string
	output       string
	maxRetries   int
	blockedHosts []string

	// sleep is swapped out in tests so retry/politeness pacing does not
	// slow the suite down.
	sleep func(time.Duration)
}

type Options struct {
	Client       *http.Client
	Logger       *ui.Logger
	Renderer     Renderer
	Progress     *ui.MPBProgressManager
	Stats        *ui.Stats
	BaseURL      string
	Output       string
	MaxRetries   int
	BlockedHosts []string
}

func New(opts Options) *Scraper {
	s := &Scraper{
		client:       opts.Client,
		log:          opts.Logger,
		render:       opts.Renderer,
		progress:     opts.Progress,
		stats:        opts.Stats,
		baseURL:      opts.BaseURL,
		output:       opts.Output,
		maxRetries:   opts.MaxRetries,
		blockedHosts: opts.BlockedHosts,
		sleep:        time.Sleep,
	}

	if s.client == nil {
		s.client = &http.Client{Timeout: 30 * time.Second}
	}
	if s.log == nil {
		s.log = ui.NewLogger(false)
	}
	if s.stats == nil {
		s.stats = &ui.Stats{}
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 3
	}
	if s.blockedHosts == nil {
		s.blockedHosts = []string{"reddit", "twitter", "facebook", "twitch"}
	}

	return s
}
