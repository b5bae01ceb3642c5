package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fhaberland/wgstats/internal/domain/models"
)

// CSS selectors for the ad detail page.
const (
	selHeadline    = ".detailed-view-title span[class]"
	selDescription = "div[id^='freitext']"
	selAddressLink = `a[href="#map_container"]`
)

var (
	// Berlin zip codes run 10115..14199.
	zipRe = regexp.MustCompile(`1[0-4]\d{3}`)
	// Street with optional house number, everything before the zip code.
	streetRe   = regexp.MustCompile(`^(.+?)(?:1[0-4]\d{3}\s|$)`)
	detailDate = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	ageRangeRe = regexp.MustCompile(`(\d+)\s*bis\s*(\d+)`)
	ageOneRe   = regexp.MustCompile(`\d+`)
)

// ParseDetailPage extracts the detail fields of a single ad.
//
// An ad that has been taken offline renders without a headline; in that case
// an empty ListingDetails is returned so the caller can tell "offline" from
// "parse failure".
func ParseDetailPage(html string) (models.ListingDetails, error) {
	var d models.ListingDetails

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return d, fmt.Errorf("parse html: %w", err)
	}

	headlines := doc.Find(selHeadline)
	if headlines.Length() == 0 {
		// Ad is no longer online.
		return d, nil
	}
	// The site sometimes duplicates the title span; the second one holds the
	// visible headline.
	d.Headline = strings.TrimSpace(headlines.First().Text())
	if headlines.Length() > 1 {
		d.Headline = strings.TrimSpace(headlines.Eq(1).Text())
	}

	var parts []string
	doc.Find(selDescription).Each(func(_ int, div *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(div.Text()))
	})
	d.Description = strings.Join(parts, "\n")

	if addr := extractAddress(doc); addr != "" {
		d.Street = extractStreet(addr)
		d.ZipCode = extractZip(addr)
	}

	d.AvailableFrom = extractAvailabilityDate(doc, "frei ab:")
	d.AvailableUntil = extractAvailabilityDate(doc, "frei bis:")
	d.AgeMin, d.AgeMax = extractAgeRange(doc)

	return d, nil
}

// extractAddress returns the whitespace-normalized text of the map link.
func extractAddress(doc *goquery.Document) string {
	link := doc.Find(selAddressLink).First()
	if link.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(link.Text(), " "))
}

// extractStreet returns the street (and house number) preceding the zip code.
func extractStreet(address string) string {
	m := streetRe.FindStringSubmatch(address)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), ".,")
}

// extractZip returns the first Berlin zip code found in the address.
func extractZip(address string) string {
	return zipRe.FindString(address)
}

// extractAvailabilityDate finds a "frei ab:" / "frei bis:" label span and
// reads the date from the span in the label's sibling column.
func extractAvailabilityDate(doc *goquery.Document, label string) *time.Time {
	var out *time.Time
	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if !strings.Contains(span.Text(), label) {
			return true
		}
		valueSpan := span.Closest("div").NextFiltered("div").Find("span").First()
		text := strings.TrimSpace(valueSpan.Text())
		if !detailDate.MatchString(text) {
			return false
		}
		if t, err := time.Parse(publishedLayout, detailDate.FindString(text)); err == nil {
			out = &t
		}
		return false
	})
	return out
}

// extractAgeRange reads "Bewohneralter: 20 bis 30" (or a single age) from the
// occupant info span.
func extractAgeRange(doc *goquery.Document) (*int, *int) {
	var ageMin, ageMax *int
	doc.Find("span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		text := strings.TrimSpace(span.Text())
		if !strings.HasPrefix(text, "Bewohneralter:") {
			return true
		}
		if m := ageRangeRe.FindStringSubmatch(text); m != nil {
			lo, _ := strconv.Atoi(m[1])
			hi, _ := strconv.Atoi(m[2])
			ageMin, ageMax = &lo, &hi
			return false
		}
		if m := ageOneRe.FindString(text); m != "" {
			age, _ := strconv.Atoi(m)
			ageMin, ageMax = &age, &age
		}
		return false
	})
	return ageMin, ageMax
}
