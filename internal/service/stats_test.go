package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fhaberland/wgstats/internal/domain/models"
	"github.com/fhaberland/wgstats/internal/storage"
)

// stubRepo returns canned data and records the last filter it saw.
type stubRepo struct {
	listings   []models.Listing
	districts  []models.DistrictStats
	market     *models.MarketStats
	err        error
	lastFilter storage.ListingFilter
}

func (s *stubRepo) UpsertListingsBatch(context.Context, []models.Listing) error { return nil }

func (s *stubRepo) UpdateListingDetails(context.Context, string, models.ListingDetails) error {
	return nil
}

func (s *stubRepo) ListingsMissingDetails(context.Context, int) ([]string, error) { return nil, nil }

func (s *stubRepo) ListListings(_ context.Context, filter storage.ListingFilter) ([]models.Listing, error) {
	s.lastFilter = filter
	return s.listings, s.err
}

func (s *stubRepo) GetDistrictStats(context.Context) ([]models.DistrictStats, error) {
	return s.districts, s.err
}

func (s *stubRepo) GetMarketStats(context.Context, *string, *time.Time, *time.Time) (*models.MarketStats, error) {
	return s.market, s.err
}

func (s *stubRepo) HasScrapeForDate(context.Context, time.Time) (bool, error) { return false, nil }

func (s *stubRepo) UpsertScrapeLog(context.Context, time.Time, int, int, int) error { return nil }

func TestListListings_PassesFilter(t *testing.T) {
	repo := &stubRepo{listings: []models.Listing{{URL: "/ad1.html"}}}
	svc := NewStatsService(repo)

	minRent := 300
	got, err := svc.ListListings(context.Background(), storage.ListingFilter{District: "Mitte", MinRent: &minRent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "/ad1.html" {
		t.Fatalf("unexpected listings: %+v", got)
	}
	if repo.lastFilter.District != "Mitte" || repo.lastFilter.MinRent != &minRent {
		t.Fatalf("filter not forwarded: %+v", repo.lastFilter)
	}
}

func TestDistrictStats_PropagatesError(t *testing.T) {
	repo := &stubRepo{err: errors.New("db down")}
	svc := NewStatsService(repo)

	if _, err := svc.DistrictStats(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestMarketStats(t *testing.T) {
	repo := &stubRepo{market: &models.MarketStats{ListingCount: 7}}
	svc := NewStatsService(repo)

	got, err := svc.MarketStats(context.Background(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ListingCount != 7 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}
