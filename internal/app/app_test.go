package app

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/fhaberland/wgstats/config"
)

func TestInitPostgres_OpenError(t *testing.T) {
	original := sqlOpener
	defer func() { sqlOpener = original }()

	sqlOpener = func(driverName, dsn string) (*sql.DB, error) {
		return nil, errors.New("bad driver")
	}

	if _, err := InitPostgres(config.Config{}); err == nil || !strings.Contains(err.Error(), "failed to open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestInitPostgres_PingError(t *testing.T) {
	cfg := config.Config{
		Postgres: config.PostgresConfig{
			User:     "user",
			Password: "pass",
			Host:     "127.0.0.1",
			Port:     54329, // nothing listens here
			DBName:   "wgstats",
			SSLMode:  "disable",
		},
	}

	if _, err := InitPostgres(cfg); err == nil || !strings.Contains(err.Error(), "failed to ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}

func TestInitializeApp_PostgresError(t *testing.T) {
	original := postgresOpener
	defer func() { postgresOpener = original }()

	postgresOpener = func(cfg config.Config) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	if _, _, err := InitializeApp(); err == nil || !strings.Contains(err.Error(), "failed to initialize postgres") {
		t.Fatalf("expected initialization error, got %v", err)
	}
}

func TestInitializeApp_MigrateError(t *testing.T) {
	originalOpener := postgresOpener
	originalMigrator := migrator
	defer func() {
		postgresOpener = originalOpener
		migrator = originalMigrator
	}()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.ExpectClose()

	postgresOpener = func(cfg config.Config) (*sql.DB, error) { return db, nil }
	migrator = func(*sql.DB) error { return errors.New("broken migration") }

	if _, _, err := InitializeApp(); err == nil || !strings.Contains(err.Error(), "failed to migrate database") {
		t.Fatalf("expected migration error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("db not closed on failure: %v", err)
	}
}

func TestInitializeApp_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)

	originalOpener := postgresOpener
	originalMigrator := migrator
	defer func() {
		postgresOpener = originalOpener
		migrator = originalMigrator
	}()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.ExpectClose()

	postgresOpener = func(cfg config.Config) (*sql.DB, error) { return db, nil }
	migrator = func(*sql.DB) error { return nil }

	router, cleanup, err := InitializeApp()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", w.Code)
	}

	cleanup()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("cleanup did not close db: %v", err)
	}
}
