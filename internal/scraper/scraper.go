package scraper

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/fhaberland/wgstats/config"
	"github.com/fhaberland/wgstats/internal/domain/models"
	"github.com/fhaberland/wgstats/internal/logger"
	"github.com/fhaberland/wgstats/internal/storage"
)

const (
	// maxDetailParallel caps concurrent detail-page fetches.
	maxDetailParallel = 8
	// detailRetries is the number of extra attempts per detail page on top of
	// the first one.
	detailRetries = 2
	// upsertBatchSize flushes listings to the database in chunks.
	upsertBatchSize = 500
)

// Fetcher abstracts the HTTP layer so the crawl logic can be tested without
// a proxy pool. *Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, int, error)
}

// Options controls a single scrape run.
type Options struct {
	StartPage    int  // first result page (0-based)
	EndPage      int  // stop before this page; 0 means crawl until an empty page
	Parallel     int  // detail-fetch concurrency (0 = auto up to CPU, max 8)
	Force        bool // rerun even if today is already in the scrape log
	FetchDetails bool // visit each ad's detail page after the list crawl
}

// RunReport summarizes a scrape run.
type RunReport struct {
	Pages    int
	Details  int
	Skipped  bool
	Listings []models.Listing
}

// Scraper crawls the paginated search results, persists listings, and
// optionally enriches them from their detail pages.
type Scraper struct {
	cfg    config.ScraperConfig
	client Fetcher
	repo   storage.ListingsRepository
	log    zerolog.Logger
}

// New builds a Scraper from its dependencies.
func New(cfg config.ScraperConfig, client Fetcher, repo storage.ListingsRepository) *Scraper {
	return &Scraper{
		cfg:    cfg,
		client: client,
		repo:   repo,
		log:    logger.With("scraper"),
	}
}

// Run executes one scrape: list crawl, batch upsert, optional detail pass,
// scrape-log entry.
//
// Idempotency: at most one scrape per calendar day. If today is already
// recorded and Force is not set, the run is skipped. Force reruns the day;
// the URL-keyed upsert refreshes existing rows instead of duplicating them.
// A run that scraped no pages at all (site unreachable or blocking from page
// one) does not mark the day, so a later retry still goes through.
func (s *Scraper) Run(ctx context.Context, opts Options) (*RunReport, error) {
	today := truncateToDate(time.Now())

	exists, err := s.repo.HasScrapeForDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("check scrape log: %w", err)
	}
	if exists && !opts.Force {
		s.log.Info().Time("date", today).Msg("already scraped today, skipping (use --force to rerun)")
		return &RunReport{Skipped: true}, nil
	}

	start := time.Now()
	listings, pages, err := s.crawlListPages(ctx, opts.StartPage, opts.EndPage)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("pages", pages).Int("listings", len(listings)).Dur("elapsed", time.Since(start)).Msg("list crawl done")

	for i := 0; i < len(listings); i += upsertBatchSize {
		end := min(i+upsertBatchSize, len(listings))
		if err := s.repo.UpsertListingsBatch(ctx, listings[i:end]); err != nil {
			return nil, fmt.Errorf("upsert batch ending at %d: %w", end, err)
		}
	}

	details := 0
	if opts.FetchDetails {
		details, err = s.FetchDetails(ctx, opts.Parallel)
		if err != nil {
			return nil, err
		}
	}

	if pages == 0 {
		s.log.Warn().Msg("crawl yielded no pages, not marking the day as scraped")
		return &RunReport{Listings: listings, Details: details}, nil
	}

	if err := s.repo.UpsertScrapeLog(ctx, today, pages, len(listings), details); err != nil {
		return nil, fmt.Errorf("upsert scrape log: %w", err)
	}

	return &RunReport{Pages: pages, Details: details, Listings: listings}, nil
}

// crawlListPages walks result pages from startPage until endPage, a
// non-200 response, or a page without ads. Listings are deduplicated by URL
// across pages (the site repeats ads near page boundaries).
func (s *Scraper) crawlListPages(ctx context.Context, startPage, endPage int) ([]models.Listing, int, error) {
	seen := make(map[string]struct{})
	var all []models.Listing

	page := startPage
	for {
		if endPage > 0 && page >= endPage {
			s.log.Info().Int("end_page", endPage).Msg("reached end page limit, stopping")
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		url := s.pageURL(page)
		s.log.Debug().Str("url", url).Msg("scraping page")

		body, status, err := s.client.Get(ctx, url)
		if err != nil {
			if len(all) > 0 {
				// Keep what we have; the partial crawl is still worth persisting.
				s.log.Warn().Int("page", page).Err(err).Msg("page fetch failed, stopping crawl")
				break
			}
			return nil, 0, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if status != http.StatusOK {
			s.log.Warn().Int("page", page).Int("status", status).Msg("unexpected status, stopping")
			break
		}

		pageListings, skippedRows, err := ParseListPage(string(body))
		if err != nil {
			return nil, 0, fmt.Errorf("parse page %d: %w", page, err)
		}
		if skippedRows > 0 {
			s.log.Warn().Int("page", page).Int("skipped_rows", skippedRows).Msg("some ad rows failed to parse")
		}
		if len(pageListings) == 0 {
			s.log.Info().Int("page", page).Msg("no more ads found, stopping")
			break
		}

		added := 0
		for _, l := range pageListings {
			if _, dup := seen[l.URL]; dup {
				continue
			}
			seen[l.URL] = struct{}{}
			all = append(all, l)
			added++
		}
		s.log.Debug().Int("page", page).Int("ads", added).Msg("page scraped")
		page++
	}

	pagesScraped := max(0, page-startPage)
	return all, pagesScraped, nil
}

// FetchDetails visits the detail page of every stored listing that has not
// been enriched yet. The repository serves candidates in capped batches, so
// the pass keeps draining batches until no unvisited listing remains; URLs
// that failed this pass are not requested again. Fetches run concurrently
// with a bounded worker count; a single broken ad is logged and skipped
// rather than failing the pass.
//
// Returns the number of listings whose details were stored.
func (s *Scraper) FetchDetails(ctx context.Context, parallel int) (int, error) {
	maxParallel := maxDetailParallel
	if parallel > 0 {
		maxParallel = min(parallel, maxDetailParallel)
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	attempted := make(map[string]struct{})
	total := 0

	for {
		urls, err := s.repo.ListingsMissingDetails(ctx, 0)
		if err != nil {
			return total, fmt.Errorf("list missing details: %w", err)
		}

		batch := make([]string, 0, len(urls))
		for _, u := range urls {
			if _, seen := attempted[u]; seen {
				continue
			}
			attempted[u] = struct{}{}
			batch = append(batch, u)
		}
		if len(batch) == 0 {
			break
		}
		s.log.Info().Int("urls", len(batch)).Int("max_parallel", maxParallel).Msg("detail batch start")

		stored, err := s.fetchDetailBatch(ctx, batch, maxParallel)
		total += stored
		if err != nil {
			return total, err
		}
	}

	s.log.Info().Int("stored", total).Msg("detail pass done")
	return total, nil
}

// fetchDetailBatch processes one batch of detail URLs concurrently and
// returns how many detail sets were stored.
func (s *Scraper) fetchDetailBatch(ctx context.Context, urls []string, maxParallel int) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)
	var done atomic.Int64

	for _, u := range urls {
		adURL := u
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()

			details, err := s.fetchDetail(gctx, adURL)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warn().Str("url", adURL).Err(err).Msg("detail fetch failed, skipping")
				return nil
			}
			if details.IsEmpty() {
				s.log.Debug().Str("url", adURL).Msg("ad no longer online")
			}
			if err := s.repo.UpdateListingDetails(gctx, adURL, details); err != nil {
				return fmt.Errorf("update details for %s: %w", adURL, err)
			}
			done.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(done.Load()), err
	}
	return int(done.Load()), nil
}

// fetchDetail fetches and parses one detail page with exponential-backoff
// retries.
func (s *Scraper) fetchDetail(ctx context.Context, adURL string) (models.ListingDetails, error) {
	var details models.ListingDetails

	operation := func() error {
		body, status, err := s.client.Get(ctx, s.absURL(adURL))
		if err != nil {
			return err
		}
		if status != http.StatusOK {
			return fmt.Errorf("detail page returned status %d", status)
		}
		details, err = ParseDetailPage(string(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), detailRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return models.ListingDetails{}, err
	}
	return details, nil
}

// pageURL builds the search-results URL for one page.
func (s *Scraper) pageURL(page int) string {
	return fmt.Sprintf("%s/%s.%d.html?pagination=1&pu=", s.cfg.BaseURL, s.cfg.CityPath, page)
}

// absURL resolves the relative ad links found on result pages.
func (s *Scraper) absURL(u string) string {
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return u
	}
	return s.cfg.BaseURL + "/" + strings.TrimPrefix(u, "/")
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
