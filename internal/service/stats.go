package service

import (
	"context"
	"time"

	"github.com/fhaberland/wgstats/internal/domain/models"
	"github.com/fhaberland/wgstats/internal/storage"
)

// StatsService defines business logic over the collected listings.
// This decouples HTTP handlers from data access.
type StatsService interface {
	ListListings(ctx context.Context, filter storage.ListingFilter) ([]models.Listing, error)
	DistrictStats(ctx context.Context) ([]models.DistrictStats, error)
	MarketStats(ctx context.Context, district *string, from *time.Time, to *time.Time) (*models.MarketStats, error)
}

type statsService struct {
	repo storage.ListingsRepository
}

func NewStatsService(repo storage.ListingsRepository) StatsService {
	return &statsService{repo: repo}
}

func (s *statsService) ListListings(ctx context.Context, filter storage.ListingFilter) ([]models.Listing, error) {
	return s.repo.ListListings(ctx, filter)
}

func (s *statsService) DistrictStats(ctx context.Context) ([]models.DistrictStats, error) {
	return s.repo.GetDistrictStats(ctx)
}

func (s *statsService) MarketStats(ctx context.Context, district *string, from *time.Time, to *time.Time) (*models.MarketStats, error) {
	// Room for caching or precomputed rollups later; today this is a pass-through.
	return s.repo.GetMarketStats(ctx, district, from, to)
}
