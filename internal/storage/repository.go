package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/fhaberland/wgstats/internal/domain/models"
)

// ListingFilter narrows ListListings results. Zero values mean "no filter";
// Limit is clamped by the repository to a sane maximum.
type ListingFilter struct {
	District string
	MinRent  *int
	MaxRent  *int
	Limit    int
}

const maxListingLimit = 500

// ListingsRepository defines the contract for DB operations. Every method is
// context-aware so request timeouts and crawl cancellation reach the driver.
type ListingsRepository interface {
	UpsertListingsBatch(ctx context.Context, listings []models.Listing) error
	UpdateListingDetails(ctx context.Context, url string, details models.ListingDetails) error
	ListingsMissingDetails(ctx context.Context, limit int) ([]string, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	GetDistrictStats(ctx context.Context) ([]models.DistrictStats, error)
	GetMarketStats(ctx context.Context, district *string, from *time.Time, to *time.Time) (*models.MarketStats, error)
	HasScrapeForDate(ctx context.Context, date time.Time) (bool, error)
	UpsertScrapeLog(ctx context.Context, date time.Time, pages, listingCount, detailCount int) error
}

type listingsRepository struct {
	db *sql.DB
}

func NewListingsRepository(db *sql.DB) ListingsRepository {
	return &listingsRepository{db: db}
}

// UpsertListingsBatch bulk-loads listings in a single transaction.
//
// pq.CopyIn cannot express ON CONFLICT, so rows are COPYed into a temp
// staging table first and merged into listings from there. Re-scraped URLs
// refresh their row-level fields and bump last_seen; detail columns are left
// untouched.
func (r *listingsRepository) UpsertListingsBatch(ctx context.Context, listings []models.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.ExecContext(ctx, `SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		CREATE TEMP TABLE listings_stage (
			url                 TEXT,
			published           DATE,
			rent                INT,
			size_sqm            INT,
			district            TEXT,
			female_inhabitants  INT,
			male_inhabitants    INT,
			diverse_inhabitants INT,
			total_inhabitants   INT
		) ON COMMIT DROP
	`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"listings_stage",
		"url",
		"published",
		"rent",
		"size_sqm",
		"district",
		"female_inhabitants",
		"male_inhabitants",
		"diverse_inhabitants",
		"total_inhabitants",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, l := range listings {
		if _, err := stmt.ExecContext(ctx,
			l.URL,
			l.Published,
			l.Rent,
			l.SizeSqm,
			l.District,
			l.FemaleInhabitants,
			l.MaleInhabitants,
			l.DiverseInhabitants,
			l.TotalInhabitants,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO listings (
			url, published, rent, size_sqm, district,
			female_inhabitants, male_inhabitants, diverse_inhabitants, total_inhabitants
		)
		SELECT DISTINCT ON (url)
			url, published, rent, size_sqm, district,
			female_inhabitants, male_inhabitants, diverse_inhabitants, total_inhabitants
		FROM listings_stage
		ON CONFLICT (url)
		DO UPDATE SET published           = EXCLUDED.published,
					  rent                = EXCLUDED.rent,
					  size_sqm            = EXCLUDED.size_sqm,
					  district            = EXCLUDED.district,
					  female_inhabitants  = EXCLUDED.female_inhabitants,
					  male_inhabitants    = EXCLUDED.male_inhabitants,
					  diverse_inhabitants = EXCLUDED.diverse_inhabitants,
					  total_inhabitants   = EXCLUDED.total_inhabitants,
					  last_seen           = NOW()
	`); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// UpdateListingDetails stores the detail-page fields for one listing and
// marks the detail pass as done for it. Offline ads call this with empty
// details so they are not fetched again.
func (r *listingsRepository) UpdateListingDetails(ctx context.Context, url string, details models.ListingDetails) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE listings
		SET headline          = $2,
			description       = $3,
			street            = $4,
			zip_code          = $5,
			available_from    = $6,
			available_until   = $7,
			age_min           = $8,
			age_max           = $9,
			details_scraped_at = NOW()
		WHERE url = $1
	`,
		url,
		toNullString(details.Headline),
		toNullString(details.Description),
		toNullString(details.Street),
		toNullString(details.ZipCode),
		toNullTime(details.AvailableFrom),
		toNullTime(details.AvailableUntil),
		toNullInt(details.AgeMin),
		toNullInt(details.AgeMax),
	)
	return err
}

// ListingsMissingDetails returns URLs whose detail page has not been visited
// yet, newest ads first.
func (r *listingsRepository) ListingsMissingDetails(ctx context.Context, limit int) ([]string, error) {
	if limit < 1 {
		limit = maxListingLimit
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT url FROM listings
		WHERE details_scraped_at IS NULL
		ORDER BY published DESC, url
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// ListListings returns listings matching the filter, newest first.
func (r *listingsRepository) ListListings(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	conditions := "TRUE"
	var args []interface{}
	if filter.District != "" {
		args = append(args, filter.District)
		conditions += fmt.Sprintf(" AND district = $%d", len(args))
	}
	if filter.MinRent != nil {
		args = append(args, *filter.MinRent)
		conditions += fmt.Sprintf(" AND rent >= $%d", len(args))
	}
	if filter.MaxRent != nil {
		args = append(args, *filter.MaxRent)
		conditions += fmt.Sprintf(" AND rent <= $%d", len(args))
	}

	limit := filter.Limit
	if limit < 1 || limit > maxListingLimit {
		limit = maxListingLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT url, published, rent, size_sqm, district,
			   female_inhabitants, male_inhabitants, diverse_inhabitants, total_inhabitants,
			   headline, street, zip_code, available_from, available_until
		FROM listings
		WHERE %s
		ORDER BY published DESC, url
		LIMIT $%d
	`, conditions, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Listing
	for rows.Next() {
		var (
			l              models.Listing
			headline       sql.NullString
			street         sql.NullString
			zipCode        sql.NullString
			availableFrom  sql.NullTime
			availableUntil sql.NullTime
		)
		if err := rows.Scan(
			&l.URL, &l.Published, &l.Rent, &l.SizeSqm, &l.District,
			&l.FemaleInhabitants, &l.MaleInhabitants, &l.DiverseInhabitants, &l.TotalInhabitants,
			&headline, &street, &zipCode, &availableFrom, &availableUntil,
		); err != nil {
			return nil, err
		}
		if headline.Valid || street.Valid || zipCode.Valid || availableFrom.Valid || availableUntil.Valid {
			d := &models.ListingDetails{
				Headline: headline.String,
				Street:   street.String,
				ZipCode:  zipCode.String,
			}
			if availableFrom.Valid {
				t := availableFrom.Time
				d.AvailableFrom = &t
			}
			if availableUntil.Valid {
				t := availableUntil.Time
				d.AvailableUntil = &t
			}
			l.Details = d
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetDistrictStats returns per-district aggregates over all stored listings,
// busiest districts first. Rent-per-m² only considers rows with a known size.
func (r *listingsRepository) GetDistrictStats(ctx context.Context) ([]models.DistrictStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT district,
			   COUNT(*) AS listing_count,
			   COALESCE(AVG(rent), 0) AS avg_rent,
			   COALESCE(AVG(size_sqm), 0) AS avg_size_sqm,
			   COALESCE(AVG(CASE WHEN size_sqm > 0 THEN rent::float8 / size_sqm END), 0) AS avg_rent_per_sqm
		FROM listings
		GROUP BY district
		ORDER BY listing_count DESC, district
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.DistrictStats
	for rows.Next() {
		var s models.DistrictStats
		if err := rows.Scan(&s.District, &s.ListingCount, &s.AvgRent, &s.AvgSizeSqm, &s.AvgRentPerSqm); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMarketStats aggregates the market for an optional district and published
// date range. Returns nil when no listing matches.
func (r *listingsRepository) GetMarketStats(ctx context.Context, district *string, from *time.Time, to *time.Time) (*models.MarketStats, error) {
	conditions := "TRUE"
	var args []interface{}
	if district != nil {
		args = append(args, *district)
		conditions += fmt.Sprintf(" AND district = $%d", len(args))
	}
	if from != nil {
		args = append(args, *from)
		conditions += fmt.Sprintf(" AND published >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		conditions += fmt.Sprintf(" AND published <= $%d", len(args))
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*) AS listing_count,
			   COALESCE(AVG(rent), 0) AS avg_rent,
			   COALESCE(MIN(rent), 0) AS min_rent,
			   COALESCE(MAX(rent), 0) AS max_rent,
			   COALESCE(AVG(size_sqm), 0) AS avg_size_sqm,
			   COALESCE(AVG(CASE WHEN size_sqm > 0 THEN rent::float8 / size_sqm END), 0) AS avg_rent_per_sqm,
			   COALESCE(SUM(female_inhabitants), 0) AS female_inhabitants,
			   COALESCE(SUM(male_inhabitants), 0) AS male_inhabitants,
			   COALESCE(SUM(diverse_inhabitants), 0) AS diverse_inhabitants,
			   COALESCE(SUM(total_inhabitants), 0) AS total_inhabitants
		FROM listings
		WHERE %s
	`, conditions)

	var s models.MarketStats
	if district != nil {
		s.District = *district
	}

	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&s.ListingCount,
		&s.AvgRent,
		&s.MinRent,
		&s.MaxRent,
		&s.AvgSizeSqm,
		&s.AvgRentPerSqm,
		&s.FemaleInhabitants,
		&s.MaleInhabitants,
		&s.DiverseInhabitants,
		&s.TotalInhabitants,
	)
	if err != nil {
		return nil, err
	}

	// No matching listings means no data, not a zero-valued market.
	if s.ListingCount == 0 {
		return nil, nil
	}
	return &s, nil
}

// HasScrapeForDate checks if a scrape was already recorded for a given day.
func (r *listingsRepository) HasScrapeForDate(ctx context.Context, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM scrape_log WHERE scrape_date = $1)`, date).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertScrapeLog records (or updates) the scrape run for a given day.
func (r *listingsRepository) UpsertScrapeLog(ctx context.Context, date time.Time, pages, listingCount, detailCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scrape_log (scrape_date, pages, listing_count, detail_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (scrape_date)
		DO UPDATE SET pages = EXCLUDED.pages,
					  listing_count = EXCLUDED.listing_count,
					  detail_count = EXCLUDED.detail_count,
					  scraped_at = NOW()
	`, date, pages, listingCount, detailCount)
	return err
}

// helpers to map zero values to SQL NULLs

func toNullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func toNullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func toNullInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}
