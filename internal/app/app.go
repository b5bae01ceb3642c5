package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/fhaberland/wgstats/config"
	"github.com/fhaberland/wgstats/internal/api"
	"github.com/fhaberland/wgstats/internal/service"
	"github.com/fhaberland/wgstats/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Applies pending schema migrations.
//   - Initializes the repository layer (ListingsRepository).
//   - Creates the service and HTTP handler layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes.
//   - Provides a cleanup function to close resources (e.g., DB connection).
func InitializeApp() (*gin.Engine, func(), error) {
	// Load global configuration
	cfg := config.AppConfig

	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	// Ensure the schema is up to date before serving
	if err := migrator(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repository layer (responsible for DB access)
	repo := storage.NewListingsRepository(db)

	// Initialize service layer (business logic)
	svc := service.NewStatsService(repo)

	// Initialize HTTP handler layer (business logic to HTTP mapping)
	handler := api.NewHandler(svc)

	// Setup Gin router with routes
	router := api.NewRouter(handler)

	// Register health and readiness probes
	healthHandler := api.NewHealthHandler(db.Ping)
	healthHandler.Register(router)

	// Cleanup resources on shutdown
	cleanup := func() {
		_ = db.Close()
	}

	return router, cleanup, nil
}

// migrator is an indirection for unit testing; defaults to MigrateDB.
var migrator = MigrateDB
