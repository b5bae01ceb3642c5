package main

//
//  @title           wgstats API
//  @version         1.0
//  @description     Berlin flat-share listings scraper & statistics service.
//  @termsOfService  https://github.com/fhaberland/wgstats
//  @contact.name    API Support
//  @contact.url     https://github.com/fhaberland/wgstats
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        listings
//  @tag.description Endpoints for querying collected flat-share ads
//
//  @tag.name        stats
//  @tag.description Endpoints for market and district statistics
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fhaberland/wgstats/config"
	_ "github.com/fhaberland/wgstats/docs" // swagger docs
	"github.com/fhaberland/wgstats/internal/app"
	"github.com/fhaberland/wgstats/internal/export"
	"github.com/fhaberland/wgstats/internal/logger"
	"github.com/fhaberland/wgstats/internal/scraper"
	"github.com/fhaberland/wgstats/internal/storage"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the wgstats application.
//
// Modes (selected via --mode flag):
//   - scrape: Crawls the wg-gesucht Berlin search results and persists listings.
//   - api:    Starts the REST API to expose listings and market statistics.
//
// Flags:
//   - --mode:       Execution mode ("scrape" or "api"). Default: "scrape".
//   - --start-page: First result page to crawl. Default: 0.
//   - --end-page:   Stop before this page (0 = crawl until empty). Default: 0.
//   - --parallel:   Concurrent detail-page fetches (0=auto up to CPU, max 8).
//   - --force:      Rescrape even if today is already in the scrape log.
//   - --details:    Fetch detail pages after the list crawl. Default: true.
//   - --csv:        Optional path to export the scraped listings as CSV.
//   - --port:       Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "scrape", "Mode: scrape or api")
	startPage := flag.Int("start-page", 0, "First result page to crawl")
	endPage := flag.Int("end-page", 0, "Stop before this page (0 = until empty)")
	parallel := flag.Int("parallel", 0, "Concurrent detail fetches (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Rescrape even if today was already scraped")
	details := flag.Bool("details", true, "Fetch detail pages after the list crawl")
	csvPath := flag.String("csv", "", "Optional CSV export path for scraped listings")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "scrape":
		// Scrape mode: crawl the search results and persist listings
		logger.L().Info().Msg("running scrape")

		// Direct DB connection for scraping
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		if err := app.MigrateDB(db); err != nil {
			logger.L().Fatal().Err(err).Msg("migration error")
		}

		repo := storage.NewListingsRepository(db)
		client := scraper.NewClient(config.AppConfig.Scraper)
		s := scraper.New(config.AppConfig.Scraper, client, repo)

		report, err := s.Run(ctx, scraper.Options{
			StartPage:    *startPage,
			EndPage:      *endPage,
			Parallel:     *parallel,
			Force:        *force,
			FetchDetails: *details,
		})
		if err != nil {
			logger.L().Fatal().Err(err).Msg("scrape failed")
		}

		if *csvPath != "" && !report.Skipped {
			if err := export.ExportListingsCSV(*csvPath, report.Listings); err != nil {
				logger.L().Fatal().Err(err).Str("path", *csvPath).Msg("csv export failed")
			}
			logger.L().Info().Str("path", *csvPath).Int("rows", len(report.Listings)).Msg("csv exported")
		}

		logger.L().Info().
			Int("pages", report.Pages).
			Int("listings", len(report.Listings)).
			Int("details", report.Details).
			Bool("skipped", report.Skipped).
			Msg("scrape completed successfully")

	case "api":
		// API mode: start the HTTP server
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
