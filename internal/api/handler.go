package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fhaberland/wgstats/internal/domain/dto"
	"github.com/fhaberland/wgstats/internal/service"
	"github.com/fhaberland/wgstats/internal/storage"
)

const dateLayout = "2006-01-02"

// defaultMarketWindowDays is the published-date window applied to
// /stats/market when no explicit range is given.
const defaultMarketWindowDays = 30

// Handler provides HTTP handlers for listing and statistics endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the service layer for data access
//   - Translate service results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc service.StatsService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.StatsService) *Handler {
	return &Handler{svc: svc}
}

// GetListings handles GET /api/v1/listings requests.
//
// GetListings godoc
// @Summary      List collected flat-share ads
// @Description  Returns stored listings, newest first, with optional district and rent filters
// @Tags         listings
// @Produce      json
// @Param        district  query     string  false  "District name"  example(Mitte)
// @Param        min_rent  query     int     false  "Minimum rent in EUR"  example(300)
// @Param        max_rent  query     int     false  "Maximum rent in EUR"  example(800)
// @Param        limit     query     int     false  "Maximum number of rows (default 500)"  example(50)
// @Success      200       {object}  dto.ListingsResponse   "Success"
// @Failure      400       {object}  dto.ErrorResponse      "Bad Request"
// @Failure      500       {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/listings [get]
func (h *Handler) GetListings(c *gin.Context) {
	filter := storage.ListingFilter{
		District: strings.TrimSpace(c.Query("district")),
	}

	if s := c.Query("min_rent"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid min_rent, expected non-negative integer", err))
			return
		}
		filter.MinRent = &v
	}
	if s := c.Query("max_rent"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid max_rent, expected non-negative integer", err))
			return
		}
		filter.MaxRent = &v
	}
	if filter.MinRent != nil && filter.MaxRent != nil && *filter.MinRent > *filter.MaxRent {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("min_rent must not exceed max_rent", nil))
		return
	}

	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid limit, expected positive integer", err))
			return
		}
		filter.Limit = v
	}

	listings, err := h.svc.ListListings(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch listings", err))
		return
	}

	c.JSON(http.StatusOK, dto.NewListingsResponse(listings))
}

// GetDistrictStats handles GET /api/v1/stats/districts requests.
//
// GetDistrictStats godoc
// @Summary      Per-district aggregates
// @Description  Returns listing count, average rent, size, and rent per m² for every district
// @Tags         stats
// @Produce      json
// @Success      200  {object}  dto.DistrictStatsResponse  "Success"
// @Failure      404  {object}  dto.ErrorResponse          "Not Found"
// @Failure      500  {object}  dto.ErrorResponse          "Internal Error"
// @Router       /api/v1/stats/districts [get]
func (h *Handler) GetDistrictStats(c *gin.Context) {
	stats, err := h.svc.DistrictStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch district stats", err))
		return
	}
	if len(stats) == 0 {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	c.JSON(http.StatusOK, dto.DistrictStatsResponse{Count: len(stats), Districts: stats})
}

// GetMarketStats handles GET /api/v1/stats/market requests.
//
// GetMarketStats godoc
// @Summary      Market aggregate
// @Description  Returns rent, size, and occupant-mix aggregates for an optional district and published-date range. Defaults to the last 30 days ending yesterday.
// @Tags         stats
// @Produce      json
// @Param        district  query     string  false  "District name"             example(Kreuzberg)
// @Param        from      query     string  false  "Start date in YYYY-MM-DD"  example(2026-07-01)
// @Param        to        query     string  false  "End date in YYYY-MM-DD"    example(2026-08-01)
// @Success      200       {object}  dto.MarketStatsResponse  "Success"
// @Failure      400       {object}  dto.ErrorResponse        "Bad Request"
// @Failure      404       {object}  dto.ErrorResponse        "Not Found"
// @Failure      500       {object}  dto.ErrorResponse        "Internal Error"
// @Router       /api/v1/stats/market [get]
func (h *Handler) GetMarketStats(c *gin.Context) {
	var district *string
	if d := strings.TrimSpace(c.Query("district")); d != "" {
		district = &d
	}

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid from format, expected YYYY-MM-DD", err))
			return
		}
		from = &parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid to format, expected YYYY-MM-DD", err))
			return
		}
		to = &parsed
	}
	if from != nil && to != nil && from.After(*to) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("from must not be after to", nil))
		return
	}

	// Default window: last 30 days ending yesterday.
	if from == nil && to == nil {
		today := time.Now().UTC()
		yday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		start := yday.AddDate(0, 0, -(defaultMarketWindowDays - 1))
		from, to = &start, &yday
	}

	stats, err := h.svc.MarketStats(c.Request.Context(), district, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch market stats", err))
		return
	}
	if stats == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := dto.MarketStatsResponse{Stats: *stats}
	if from != nil {
		resp.From = from.Format(dateLayout)
	}
	if to != nil {
		resp.To = to.Format(dateLayout)
	}

	c.JSON(http.StatusOK, resp)
}
