// Package report renders plain-text summaries of a scrape.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briangreenhill/eczane/eczane"
)

// WriteSummary prints a human readable report for result to w. Times are
// shown in loc.
func WriteSummary(w io.Writer, result *eczane.Result, loc *time.Location) error {
	var b strings.Builder
	fmt.Fprintln(&b, "Nöbetçi Eczane Raporu")
	fmt.Fprintln(&b, "=====================")
	fmt.Fprintf(&b, "İl: %s\n", result.City)
	fmt.Fprintf(&b, "İlçe: %s\n", result.District)
	fmt.Fprintf(&b, "Tarih: %s\n", result.Date)
	fmt.Fprintf(&b, "Toplam Eczane: %d\n", len(result.Pharmacies))
	fmt.Fprintf(&b, "Çekim Zamanı: %s\n", result.ScrapedAt.In(loc).Format("02.01.2006 15:04:05"))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "Eczaneler:")

	for i, p := range result.Pharmacies {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&b, "   Adres: %s\n", p.Address)
		fmt.Fprintf(&b, "   Telefon: %s\n", p.Phone)
		if p.DutyDate != "" {
			fmt.Fprintf(&b, "   Nöbet: %s\n", p.DutyDate)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SummaryFilename returns rapor_<city>_<instant>.txt for a report written at t.
func SummaryFilename(city string, t time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("rapor_%s_%s.txt", city, stamp)
}

// SaveSummary writes the report into dir and returns the file path.
func SaveSummary(dir string, result *eczane.Result, loc *time.Location, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, SummaryFilename(result.City, now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := WriteSummary(f, result, loc); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return path, nil
}
