package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// It is composed of smaller structs that represent different concerns of the system:
// HTTP server settings, Postgres connection details, and scraper tunables.
//
// Example YAML/ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=wgstats
//	POSTGRES_SSLMODE=disable
//	SCRAPER_BASE_URL=https://www.wg-gesucht.de
//	SCRAPER_CITY_PATH=wg-zimmer-in-Berlin.8.0.0
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Scraper  ScraperConfig  // wg-gesucht scraper settings
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// PostgresConfig defines connection details for PostgreSQL.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// ScraperConfig defines how the wg-gesucht crawler reaches the site.
//
// Fields:
//   - BaseURL: scheme + host of the listings site.
//   - CityPath: city-specific path segment of the search results
//     (e.g., "wg-zimmer-in-Berlin.8.0.0"; the page number is appended at crawl time).
//   - ProxyFile: newline-delimited host:port proxy list. Empty or missing file
//     means requests go out directly.
//   - MaxAttempts: upper bound of proxy attempts per request.
//   - ConnectTimeout / ReadTimeout: per-request network budgets.
type ScraperConfig struct {
	BaseURL        string
	CityPath       string
	ProxyFile      string
	MaxAttempts    int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
// All services should import this package and read from AppConfig instead of
// reloading environment variables directly.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Behavior:
//   - Sets defaults for all required fields.
//   - Reads environment variables automatically with viper.AutomaticEnv().
//   - Constructs the PostgreSQL connection string (DSN).
//   - Calls validateConfig() to ensure required fields are present.
//
// Fatal exit:
//   - If required variables are missing, validateConfig() will terminate the app
//     with a descriptive log message.
func LoadConfig() {
	// Default values
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "wgstats")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("SCRAPER_BASE_URL", "https://www.wg-gesucht.de")
	viper.SetDefault("SCRAPER_CITY_PATH", "wg-zimmer-in-Berlin.8.0.0")
	viper.SetDefault("SCRAPER_PROXY_FILE", "out/working_proxies_all.txt")
	viper.SetDefault("SCRAPER_MAX_ATTEMPTS", 200)
	viper.SetDefault("SCRAPER_CONNECT_TIMEOUT_MS", 3000)
	viper.SetDefault("SCRAPER_READ_TIMEOUT_MS", 5000)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	// Read environment variables automatically
	viper.AutomaticEnv()

	// Populate global config instance
	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Scraper: ScraperConfig{
			BaseURL:        viper.GetString("SCRAPER_BASE_URL"),
			CityPath:       viper.GetString("SCRAPER_CITY_PATH"),
			ProxyFile:      viper.GetString("SCRAPER_PROXY_FILE"),
			MaxAttempts:    viper.GetInt("SCRAPER_MAX_ATTEMPTS"),
			ConnectTimeout: time.Duration(viper.GetInt("SCRAPER_CONNECT_TIMEOUT_MS")) * time.Millisecond,
			ReadTimeout:    time.Duration(viper.GetInt("SCRAPER_READ_TIMEOUT_MS")) * time.Millisecond,
		},
	}

	// Construct Postgres DSN (used by database/sql)
	AppConfig.Postgres.URL = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		AppConfig.Postgres.User,
		AppConfig.Postgres.Password,
		AppConfig.Postgres.Host,
		AppConfig.Postgres.Port,
		AppConfig.Postgres.DBName,
		AppConfig.Postgres.SSLMode,
	)

	// Validate critical fields
	validateConfig()
}

// validateConfig ensures required variables are present and terminates
// the application if they are missing.
//
// This avoids unexpected runtime failures due to incomplete configuration.
//
// Behavior:
//   - Checks each critical field of AppConfig.
//   - Collects missing ones in a slice.
//   - If any are missing, logs them and terminates the app with log.Fatalf().
func validateConfig() {
	var missing []string

	if AppConfig.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if AppConfig.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if AppConfig.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if AppConfig.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if AppConfig.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if AppConfig.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if AppConfig.Scraper.BaseURL == "" {
		missing = append(missing, "SCRAPER_BASE_URL")
	}
	if AppConfig.Scraper.CityPath == "" {
		missing = append(missing, "SCRAPER_CITY_PATH")
	}

	if len(missing) > 0 {
		log.Fatalf("missing required environment variables: %v\n", missing)
	}
}
