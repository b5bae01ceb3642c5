// Package export writes collected listings to CSV for offline analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fhaberland/wgstats/internal/domain/models"
)

var csvHeader = []string{
	"url",
	"published",
	"rent",
	"size_sqm",
	"district",
	"female_inhabitants",
	"male_inhabitants",
	"diverse_inhabitants",
	"total_inhabitants",
	"headline",
	"description",
	"street",
	"zip_code",
	"available_from",
	"available_until",
	"age_min",
	"age_max",
}

// WriteListingsCSV writes listings (header included) to w. Dates are ISO
// formatted; absent optional fields become empty cells.
func WriteListingsCSV(w io.Writer, listings []models.Listing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.URL,
			l.Published.Format("2006-01-02"),
			strconv.Itoa(l.Rent),
			strconv.Itoa(l.SizeSqm),
			l.District,
			strconv.Itoa(l.FemaleInhabitants),
			strconv.Itoa(l.MaleInhabitants),
			strconv.Itoa(l.DiverseInhabitants),
			strconv.Itoa(l.TotalInhabitants),
		}
		d := l.Details
		if d == nil {
			d = &models.ListingDetails{}
		}
		row = append(row,
			d.Headline,
			d.Description,
			d.Street,
			d.ZipCode,
			formatDate(d.AvailableFrom),
			formatDate(d.AvailableUntil),
			formatInt(d.AgeMin),
			formatInt(d.AgeMax),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for %s: %w", l.URL, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportListingsCSV writes listings to a file at path, creating or
// truncating it.
func ExportListingsCSV(path string, listings []models.Listing) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := WriteListingsCSV(f, listings); err != nil {
		return err
	}
	return f.Close()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
