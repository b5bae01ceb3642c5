package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/fhaberland/wgstats/internal/domain/models"
)

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	svc := &mockStatsService{
		districts: []models.DistrictStats{{District: "Mitte", ListingCount: 1}},
		market:    &models.MarketStats{ListingCount: 1},
	}
	router := NewRouter(NewHandler(svc))

	cases := []struct {
		target string
		want   int
	}{
		{"/api/v1/listings", http.StatusOK},
		{"/api/v1/stats/districts", http.StatusOK},
		{"/api/v1/stats/market", http.StatusOK},
		{"/api/v1/nope", http.StatusNotFound},
	}
	for _, c := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, c.target, nil)
		router.ServeHTTP(w, req)
		if w.Code != c.want {
			t.Fatalf("GET %s: expected %d, got %d", c.target, c.want, w.Code)
		}
		if c.want == http.StatusOK && w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("GET %s: missing X-Request-ID header", c.target)
		}
	}
}
