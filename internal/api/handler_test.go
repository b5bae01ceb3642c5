package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fhaberland/wgstats/internal/domain/dto"
	"github.com/fhaberland/wgstats/internal/domain/models"
	"github.com/fhaberland/wgstats/internal/storage"
)

// mockStatsService lets each test script the service layer.
type mockStatsService struct {
	listings     []models.Listing
	listingsErr  error
	lastFilter   storage.ListingFilter
	districts    []models.DistrictStats
	districtsErr error
	market       *models.MarketStats
	marketErr    error
	lastDistrict *string
	lastFrom     *time.Time
	lastTo       *time.Time
}

func (m *mockStatsService) ListListings(_ context.Context, filter storage.ListingFilter) ([]models.Listing, error) {
	m.lastFilter = filter
	return m.listings, m.listingsErr
}

func (m *mockStatsService) DistrictStats(_ context.Context) ([]models.DistrictStats, error) {
	return m.districts, m.districtsErr
}

func (m *mockStatsService) MarketStats(_ context.Context, district *string, from *time.Time, to *time.Time) (*models.MarketStats, error) {
	m.lastDistrict, m.lastFrom, m.lastTo = district, from, to
	return m.market, m.marketErr
}

func performRequest(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/test", h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestGetListings(t *testing.T) {
	published := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	svc := &mockStatsService{listings: []models.Listing{
		{URL: "/ad1.html", Published: published, Rent: 550, SizeSqm: 18, District: "Mitte"},
	}}
	h := NewHandler(svc)

	w := performRequest(h.GetListings, "/test?district=Mitte&min_rent=300&max_rent=800&limit=50")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dto.ListingsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 1 || len(resp.Listings) != 1 || resp.Listings[0].URL != "/ad1.html" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	f := svc.lastFilter
	if f.District != "Mitte" || f.MinRent == nil || *f.MinRent != 300 || f.MaxRent == nil || *f.MaxRent != 800 || f.Limit != 50 {
		t.Fatalf("filter not passed through: %+v", f)
	}
}

func TestGetListings_Validation(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"non-numeric min_rent", "/test?min_rent=abc"},
		{"negative max_rent", "/test?max_rent=-5"},
		{"min above max", "/test?min_rent=800&max_rent=300"},
		{"zero limit", "/test?limit=0"},
		{"non-numeric limit", "/test?limit=ten"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewHandler(&mockStatsService{})
			w := performRequest(h.GetListings, c.query)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetListings_ServiceError(t *testing.T) {
	h := NewHandler(&mockStatsService{listingsErr: errors.New("db down")})
	w := performRequest(h.GetListings, "/test")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetDistrictStats(t *testing.T) {
	svc := &mockStatsService{districts: []models.DistrictStats{
		{District: "Mitte", ListingCount: 142, AvgRent: 610.5},
		{District: "Neukölln", ListingCount: 98, AvgRent: 520},
	}}
	h := NewHandler(svc)

	w := performRequest(h.GetDistrictStats, "/test")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dto.DistrictStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Count != 2 || resp.Districts[0].District != "Mitte" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestGetDistrictStats_Empty(t *testing.T) {
	h := NewHandler(&mockStatsService{})
	w := performRequest(h.GetDistrictStats, "/test")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetMarketStats(t *testing.T) {
	svc := &mockStatsService{market: &models.MarketStats{District: "Kreuzberg", ListingCount: 1250, MaxRent: 1400}}
	h := NewHandler(svc)

	w := performRequest(h.GetMarketStats, "/test?district=Kreuzberg&from=2026-07-01&to=2026-08-01")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp dto.MarketStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.From != "2026-07-01" || resp.To != "2026-08-01" || resp.Stats.ListingCount != 1250 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if svc.lastDistrict == nil || *svc.lastDistrict != "Kreuzberg" {
		t.Fatalf("district not passed through: %v", svc.lastDistrict)
	}
}

func TestGetMarketStats_DefaultWindow(t *testing.T) {
	svc := &mockStatsService{market: &models.MarketStats{ListingCount: 10}}
	h := NewHandler(svc)

	w := performRequest(h.GetMarketStats, "/test")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if svc.lastFrom == nil || svc.lastTo == nil {
		t.Fatalf("default window not applied")
	}
	today := time.Now().UTC()
	wantTo := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	if !svc.lastTo.Equal(wantTo) {
		t.Fatalf("default window should end yesterday: got %v, want %v", svc.lastTo, wantTo)
	}
	if got := int(svc.lastTo.Sub(*svc.lastFrom).Hours() / 24); got != 29 {
		t.Fatalf("default window should span 30 days, got span %d", got)
	}
	if svc.lastDistrict != nil {
		t.Fatalf("no district expected, got %v", *svc.lastDistrict)
	}
}

func TestGetMarketStats_Validation(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"bad from", "/test?from=01.07.2026"},
		{"bad to", "/test?to=yesterday"},
		{"from after to", "/test?from=2026-08-01&to=2026-07-01"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := NewHandler(&mockStatsService{})
			w := performRequest(h.GetMarketStats, c.query)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetMarketStats_NoData(t *testing.T) {
	h := NewHandler(&mockStatsService{market: nil})
	w := performRequest(h.GetMarketStats, "/test?from=2026-07-01&to=2026-08-01")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetMarketStats_ServiceError(t *testing.T) {
	h := NewHandler(&mockStatsService{marketErr: errors.New("db down")})
	w := performRequest(h.GetMarketStats, "/test?from=2026-07-01&to=2026-08-01")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
