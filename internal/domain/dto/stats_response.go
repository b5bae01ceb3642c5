package dto

import "github.com/fhaberland/wgstats/internal/domain/models"

// DistrictStatsResponse is returned by GET /api/v1/stats/districts.
//
// swagger:model DistrictStatsResponse
type DistrictStatsResponse struct {
	Count     int                    `json:"count" example:"12"`
	Districts []models.DistrictStats `json:"districts"`
}

// MarketStatsResponse is returned by GET /api/v1/stats/market. The date range
// echoes back what was actually queried, including applied defaults.
//
// swagger:model MarketStatsResponse
type MarketStatsResponse struct {
	From  string             `json:"from" example:"2026-07-30"`
	To    string             `json:"to" example:"2026-08-29"`
	Stats models.MarketStats `json:"stats"`
}
