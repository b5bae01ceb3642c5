package models

import "time"

// Listing represents one flat-share ad row from the wg-gesucht search results.
//
// The listing is identified by its URL: the site shows the same ad on several
// result pages and across scrape runs, so equality and storage uniqueness are
// both keyed on URL.
//
// Occupant counts come from the icon column of the result row (one icon per
// current inhabitant, tagged female/male/diverse in its alt text).
type Listing struct {
	URL                string    `json:"url"`
	Published          time.Time `json:"published"`
	Rent               int       `json:"rent"`
	SizeSqm            int       `json:"size_sqm"`
	District           string    `json:"district"`
	FemaleInhabitants  int       `json:"female_inhabitants"`
	MaleInhabitants    int       `json:"male_inhabitants"`
	DiverseInhabitants int       `json:"diverse_inhabitants"`
	TotalInhabitants   int       `json:"total_inhabitants"`

	// Detail-page fields; nil until the detail pass has visited the ad.
	Details *ListingDetails `json:"details,omitempty"`
}

// ListingDetails holds the fields scraped from an ad's detail page.
// All fields are optional: an ad taken offline between the list scrape and
// the detail fetch yields an empty ListingDetails.
type ListingDetails struct {
	Headline       string     `json:"headline,omitempty"`
	Description    string     `json:"description,omitempty"`
	Street         string     `json:"street,omitempty"`
	ZipCode        string     `json:"zip_code,omitempty"`
	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`
	AgeMin         *int       `json:"age_min,omitempty"`
	AgeMax         *int       `json:"age_max,omitempty"`
}

// IsEmpty reports whether the detail page yielded nothing, which is how an
// offline ad presents itself.
func (d *ListingDetails) IsEmpty() bool {
	if d == nil {
		return true
	}
	return d.Headline == "" && d.Description == "" && d.Street == "" && d.ZipCode == "" &&
		d.AvailableFrom == nil && d.AvailableUntil == nil && d.AgeMin == nil && d.AgeMax == nil
}
