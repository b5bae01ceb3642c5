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

// CSS selectors for the search-results page. The site renders ads as table
// rows; every field lives in its own column cell.
const (
	selAdRow        = "tr.offer_list_item"
	selAdDate       = "td.ang_spalte_datum span"
	selAdURL        = "td.ang_spalte_datum a"
	selAdRent       = "td.ang_spalte_miete b"
	selAdSize       = "td.ang_spalte_groesse span"
	selAdDistrict   = "td.ang_spalte_stadt span"
	selOccupantIcon = "td.ang_spalte_icons img[alt]"
)

const publishedLayout = "02.01.2006"

var whitespaceRe = regexp.MustCompile(`\s+`)

// ParseListPage extracts all ad rows from a search-results page.
//
// Rows that cannot be parsed are skipped (and counted); a page where the ad
// table is missing entirely yields an empty slice, which the crawl loop
// treats as the end of pagination. Returned listings are deduplicated by URL.
func ParseListPage(html string) ([]models.Listing, int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, 0, fmt.Errorf("parse html: %w", err)
	}

	seen := make(map[string]struct{})
	var listings []models.Listing
	skipped := 0

	doc.Find(selAdRow).Each(func(_ int, row *goquery.Selection) {
		l, err := parseAdRow(row)
		if err != nil {
			skipped++
			return
		}
		if _, dup := seen[l.URL]; dup {
			return
		}
		seen[l.URL] = struct{}{}
		listings = append(listings, l)
	})

	return listings, skipped, nil
}

// parseAdRow converts a single result row into a Listing.
func parseAdRow(row *goquery.Selection) (models.Listing, error) {
	var l models.Listing

	href, ok := row.Find(selAdURL).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return l, fmt.Errorf("ad row without url")
	}
	l.URL = strings.TrimSpace(href)

	published, err := time.Parse(publishedLayout, rowText(row, selAdDate))
	if err != nil {
		return l, fmt.Errorf("invalid published date: %w", err)
	}
	l.Published = published

	if l.Rent, err = rowNumber(row, selAdRent, "€"); err != nil {
		return l, fmt.Errorf("invalid rent: %w", err)
	}
	if l.SizeSqm, err = rowNumber(row, selAdSize, "m²"); err != nil {
		return l, fmt.Errorf("invalid size: %w", err)
	}

	l.District = parseDistrict(rowText(row, selAdDistrict))

	icons := row.Find(selOccupantIcon)
	l.TotalInhabitants = icons.Length()
	icons.Each(func(_ int, img *goquery.Selection) {
		alt, _ := img.Attr("alt")
		switch {
		case strings.Contains(alt, "weiblich"):
			l.FemaleInhabitants++
		case strings.Contains(alt, "männlich"):
			l.MaleInhabitants++
		case strings.Contains(alt, "divers"):
			l.DiverseInhabitants++
		}
	})

	return l, nil
}

// rowText returns the trimmed text of the first match of sel within row.
func rowText(row *goquery.Selection, sel string) string {
	return strings.TrimSpace(row.Find(sel).First().Text())
}

// rowNumber parses a cell like "550€" or "18m²" into its integer value.
// An empty cell maps to zero.
func rowNumber(row *goquery.Selection, sel, suffix string) (int, error) {
	text := rowText(row, sel)
	if text == "" {
		return 0, nil
	}
	return strconv.Atoi(strings.TrimSuffix(text, suffix))
}

// parseDistrict normalizes the district cell: the city prefix is dropped and
// whitespace collapsed. Ads without a district fall back to "Berlin".
func parseDistrict(raw string) string {
	d := strings.ReplaceAll(raw, "Berlin", "")
	d = strings.TrimSpace(whitespaceRe.ReplaceAllString(d, " "))
	if d == "" {
		return "Berlin"
	}
	return d
}
