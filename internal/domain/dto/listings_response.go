package dto

import (
	"time"

	"github.com/fhaberland/wgstats/internal/domain/models"
)

// ListingResponse is the JSON shape of a single listing returned by the
// GET /api/v1/listings endpoint.
//
// Fields match the API contract and may differ from internal domain models.
// This keeps the API surface decoupled from scraper internals.
type ListingResponse struct {
	URL                string     `json:"url" example:"/wg-zimmer-in-Berlin-Mitte.1234.html"`
	Published          string     `json:"published" example:"2026-08-15"`
	Rent               int        `json:"rent" example:"550"`
	SizeSqm            int        `json:"size_sqm" example:"18"`
	District           string     `json:"district" example:"Mitte"`
	FemaleInhabitants  int        `json:"female_inhabitants" example:"2"`
	MaleInhabitants    int        `json:"male_inhabitants" example:"1"`
	DiverseInhabitants int        `json:"diverse_inhabitants" example:"0"`
	TotalInhabitants   int        `json:"total_inhabitants" example:"3"`
	Headline           string     `json:"headline,omitempty" example:"Sonniges Zimmer in Mitte"`
	Street             string     `json:"street,omitempty" example:"Torstraße 12"`
	ZipCode            string     `json:"zip_code,omitempty" example:"10119"`
	AvailableFrom      *time.Time `json:"available_from,omitempty"`
	AvailableUntil     *time.Time `json:"available_until,omitempty"`
}

// ListingsResponse wraps the listing collection with its size.
//
// swagger:model ListingsResponse
type ListingsResponse struct {
	Count    int               `json:"count" example:"25"`
	Listings []ListingResponse `json:"listings"`
}

// NewListingsResponse maps domain listings into the API shape.
func NewListingsResponse(listings []models.Listing) ListingsResponse {
	out := ListingsResponse{
		Count:    len(listings),
		Listings: make([]ListingResponse, 0, len(listings)),
	}
	for _, l := range listings {
		r := ListingResponse{
			URL:                l.URL,
			Published:          l.Published.Format("2006-01-02"),
			Rent:               l.Rent,
			SizeSqm:            l.SizeSqm,
			District:           l.District,
			FemaleInhabitants:  l.FemaleInhabitants,
			MaleInhabitants:    l.MaleInhabitants,
			DiverseInhabitants: l.DiverseInhabitants,
			TotalInhabitants:   l.TotalInhabitants,
		}
		if l.Details != nil {
			r.Headline = l.Details.Headline
			r.Street = l.Details.Street
			r.ZipCode = l.Details.ZipCode
			r.AvailableFrom = l.Details.AvailableFrom
			r.AvailableUntil = l.Details.AvailableUntil
		}
		out.Listings = append(out.Listings, r)
	}
	return out
}
