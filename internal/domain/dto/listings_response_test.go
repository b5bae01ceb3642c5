package dto

import (
	"testing"
	"time"

	"github.com/fhaberland/wgstats/internal/domain/models"
)

func TestNewListingsResponse(t *testing.T) {
	pub := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	in := []models.Listing{
		{
			URL:              "/wg-zimmer-in-Berlin-Mitte.1.html",
			Published:        pub,
			Rent:             550,
			SizeSqm:          18,
			District:         "Mitte",
			TotalInhabitants: 3,
		},
		{
			URL:       "/wg-zimmer-in-Berlin-Neukoelln.2.html",
			Published: pub,
			District:  "Neukölln",
			Details: &models.ListingDetails{
				Headline:      "Zimmer frei",
				Street:        "Weserstraße 5",
				ZipCode:       "12045",
				AvailableFrom: &from,
			},
		},
	}

	out := NewListingsResponse(in)
	if out.Count != 2 || len(out.Listings) != 2 {
		t.Fatalf("unexpected count: %+v", out)
	}
	if out.Listings[0].Published != "2026-08-15" {
		t.Fatalf("published not formatted: %q", out.Listings[0].Published)
	}
	if out.Listings[0].Headline != "" {
		t.Fatalf("listing without details must not carry a headline")
	}
	second := out.Listings[1]
	if second.Headline != "Zimmer frei" || second.ZipCode != "12045" || second.AvailableFrom == nil {
		t.Fatalf("details not mapped: %+v", second)
	}
}
