package models

// DistrictStats aggregates listings per Berlin district.
//
// Fields:
//   - District: district name as shown on the result page ("Mitte", "Neukölln", ...).
//   - ListingCount: number of listings in the district for the selected period.
//   - AvgRent: mean monthly rent in EUR.
//   - AvgSizeSqm: mean room size in m².
//   - AvgRentPerSqm: mean of rent/size over listings with a known size.
//
// swagger:model DistrictStats
type DistrictStats struct {
	District      string  `json:"district" example:"Mitte"`
	ListingCount  int64   `json:"listing_count" example:"142"`
	AvgRent       float64 `json:"avg_rent" example:"610.5"`
	AvgSizeSqm    float64 `json:"avg_size_sqm" example:"16.2"`
	AvgRentPerSqm float64 `json:"avg_rent_per_sqm" example:"37.7"`
}

// MarketStats aggregates the whole market (optionally one district) over a
// date range, including the gender mix of current flat inhabitants.
//
// swagger:model MarketStats
type MarketStats struct {
	District           string  `json:"district,omitempty" example:"Kreuzberg"`
	ListingCount       int64   `json:"listing_count" example:"1250"`
	AvgRent            float64 `json:"avg_rent" example:"595.3"`
	MinRent            int64   `json:"min_rent" example:"180"`
	MaxRent            int64   `json:"max_rent" example:"1400"`
	AvgSizeSqm         float64 `json:"avg_size_sqm" example:"15.8"`
	AvgRentPerSqm      float64 `json:"avg_rent_per_sqm" example:"38.4"`
	FemaleInhabitants  int64   `json:"female_inhabitants" example:"2105"`
	MaleInhabitants    int64   `json:"male_inhabitants" example:"1987"`
	DiverseInhabitants int64   `json:"diverse_inhabitants" example:"44"`
	TotalInhabitants   int64   `json:"total_inhabitants" example:"4136"`
}
