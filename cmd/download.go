package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/brogergvhs/storyd/internal/config"
	"github.com/brogergvhs/storyd/internal/pdf"
	"github.com/brogergvhs/storyd/internal/scraper"
	"github.com/brogergvhs/storyd/internal/ui"
	"github.com/brogergvhs/storyd/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagURL    string
	flagSeries bool

	// runtime
	flagOutput     string
	flagMaxPages   int
	flagMaxRetries int
	flagDryRun     bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Scrape stories into PDF files. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagURL, "url", "", "story page or category/listing page URL")
	downloadCmd.Flags().BoolVar(&flagSeries, "series", true, "resolve and scrape the full series a story belongs to")

	// runtime
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "output folder for PDF files")
	downloadCmd.Flags().IntVar(&flagMaxPages, "max-pages", 10, "maximum listing pages to crawl in category mode")
	downloadCmd.Flags().IntVar(&flagMaxRetries, "max-retries", 3, "retries per page fetch")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list discovered stories, don’t scrape")

	// headers/auth
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) (err error) {
	// outermost defect boundary: a panic in site-specific heuristics must
	// not take the whole run down without a trace
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] internal failure: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("internal failure: %v", r)
		}
	}()

	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Output:       flagOutput,
		DefaultURL:   flagURL,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		UserAgent:    flagUserAgent,
	})
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = flagMaxPages
	}
	if cmd.Flags().Changed("max-retries") {
		cfg.MaxRetries = flagMaxRetries
	}
	if cmd.Flags().Changed("series") {
		cfg.FullSeries = flagSeries
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if cfg.DefaultURL == "" {
		return fmt.Errorf("missing --url and no default_url in config")
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	util.SetupInterruptHandler(cancel)

	stats := &ui.Stats{}

	var pm *ui.MPBProgressManager
	if !flagDryRun {
		pm = ui.NewProgressManager()
		defer pm.Close()
	}

	scr := scraper.New(scraper.Options{
		Client:       client,
		Logger:       logSvc,
		Renderer:     pdf.NewRenderer(),
		Progress:     pm,
		Stats:        stats,
		BaseURL:      cfg.DefaultURL,
		Output:       cfg.Output,
		MaxRetries:   cfg.MaxRetries,
		BlockedHosts: cfg.BlockedHosts,
	})

	if flagDryRun {
		return dryRun(ctx, scr, cfg.DefaultURL)
	}

	start := time.Now()
	scr.Run(ctx, cfg.MaxPages, cfg.FullSeries)
	if pm != nil {
		pm.Close()
	}

	fmt.Println()
	fmt.Println("Run Summary:")
	fmt.Printf("Stories:  %d found, %d saved\n", stats.StoriesFound.Load(), stats.StoriesSaved.Load())
	fmt.Printf("Chapters: %d\n", stats.Chapters.Load())
	fmt.Printf("Pages:    %d\n", stats.PagesFetched.Load())
	fmt.Printf("Data:     %s\n", util.Human(stats.BytesFetched.Load()))
	fmt.Printf("Time:     %s\n", time.Since(start).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}

func dryRun(ctx context.Context, scr *scraper.Scraper, seed string) error {
	doc, err := scr.Fetch(ctx, seed)
	if err != nil {
		return err
	}

	stories := scr.ExtractStoryLinks(doc)
	if len(stories) == 0 {
		fmt.Println("Dry-run: no story links found (single story page?).")
		return nil
	}

	fmt.Printf("Dry-run: %d stories on the first listing page.\n\n", len(stories))
	for i, st := range stories {
		fmt.Printf("%3d) %s\n    %s\n", i+1, st.Title, st.URL)
	}

	return nil
}
