package eczane

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Selectors for the duty page markup. Each .tab-pane is one duty window
// (yesterday, today, tomorrow).
const (
	tabSelector     = ".tab-pane"
	dutySelector    = ".alert-warning"
	rowSelector     = "table.table tr"
	nameSelector    = ".isim"
	addressSelector = ".col-lg-6"
	phoneSelector   = ".col-lg-3.py-lg-2"

	minNameLength = 3
)

// Parser extracts pharmacies from a duty page.
type Parser struct {
	Log zerolog.Logger
}

func NewParser(log zerolog.Logger) *Parser {
	return &Parser{Log: log}
}

// Parse reads one full document and returns every pharmacy across all duty
// tabs. A name seen in an earlier row or tab wins over later duplicates.
// Rows that fail to extract are skipped; a page without duty tabs yields an
// empty slice and no error.
func (p *Parser) Parse(r io.Reader, city, district, date string) ([]Pharmacy, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	recordDistrict := district
	if recordDistrict == "" {
		recordDistrict = city
	}

	pharmacies := []Pharmacy{}
	seen := make(map[string]struct{})

	doc.Find(tabSelector).Each(func(tabIdx int, tab *goquery.Selection) {
		dutyText := strings.TrimSpace(tab.Find(dutySelector).Text())
		if dutyText == "" {
			return
		}
		p.Log.Debug().Int("tab", tabIdx).Str("duty_date", dutyText).Msg("duty window found")

		for _, ph := range p.parseRows(tab.Find(rowSelector), tabIdx, seen) {
			ph.District = recordDistrict
			ph.City = city
			ph.Date = date
			ph.DutyDate = dutyText
			pharmacies = append(pharmacies, ph)
		}
	})

	return pharmacies, nil
}

// parseRows extracts the rows of one tab, skipping names already in seen. A
// row that fails to extract is logged and dropped; the rest still count.
func (p *Parser) parseRows(rows *goquery.Selection, tabIdx int, seen map[string]struct{}) []Pharmacy {
	var out []Pharmacy
	rows.Each(func(rowIdx int, row *goquery.Selection) {
		ph, ok, err := extractRow(row, tabIdx, rowIdx)
		if err != nil {
			p.Log.Warn().Err(err).Msg("skipping pharmacy row")
			return
		}
		if !ok {
			return
		}
		if _, dup := seen[ph.Name]; dup {
			return
		}
		seen[ph.Name] = struct{}{}
		out = append(out, ph)
	})
	return out
}

// extractRow reads name, address and phone from one table row. ok is false
// for header or separator rows.
func extractRow(row *goquery.Selection, tabIdx, rowIdx int) (ph Pharmacy, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseRowError{Tab: tabIdx, Row: rowIdx, Cause: r}
			ok = false
		}
	}()

	name := strings.TrimSpace(row.Find(nameSelector).Text())
	if utf8.RuneCountInString(name) < minNameLength {
		return Pharmacy{}, false, nil
	}

	address := extractAddress(row.Find(addressSelector))
	if address == "" {
		address = AddressUnknown
	}

	phone := strings.TrimSpace(row.Find(phoneSelector).Text())
	if phone == "" {
		phone = PhoneUnknown
	}

	return Pharmacy{Name: name, Address: address, Phone: phone}, true, nil
}

// extractAddress prefers the first direct text node of the address block;
// nested elements hold landmarks and directions.
func extractAddress(sel *goquery.Selection) string {
	var address string
	sel.Contents().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if goquery.NodeName(node) != "#text" {
			return true
		}
		if text := strings.TrimSpace(node.Text()); text != "" {
			address = text
			return false
		}
		return true
	})
	if address != "" {
		return address
	}
	return strings.TrimSpace(sel.Clone().Children().Remove().End().Text())
}
