package eczane

import "time"

const (
	// AllDistricts marks a city-wide result.
	AllDistricts = "All"

	AddressUnknown = "Adres bilgisi bulunamadı"
	PhoneUnknown   = "Telefon bilgisi bulunamadı"

	// DateLayout is the request date format.
	DateLayout = "2006-01-02"
)

// Pharmacy is one on-duty pharmacy listed on the source page.
type Pharmacy struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	District string `json:"district"`
	City     string `json:"city"`
	Date     string `json:"date"`
	// DutyDate is the duty window sentence exactly as the page prints it,
	// e.g. "3 Şubat Salı akşamından 4 Şubat Çarşamba sabahına kadar."
	DutyDate string `json:"dutyDate,omitempty"`
}

// Options selects what to scrape.
type Options struct {
	City     string
	District string // optional
	Date     string // optional, YYYY-MM-DD
}

// Result is the output of one fetch and parse. It is never modified after
// Scrape returns it.
type Result struct {
	City       string     `json:"city"`
	District   string     `json:"district"`
	Date       string     `json:"date"`
	Pharmacies []Pharmacy `json:"pharmacies"`
	ScrapedAt  time.Time  `json:"scrapedAt"`
}
