package eczane

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/eczane/slug"
)

// Scraper runs one fetch and parse cycle per call.
type Scraper struct {
	fetcher  Fetcher
	parser   *Parser
	log      zerolog.Logger
	location *time.Location
	now      func() time.Time
}

type ScraperOption func(*Scraper)

// WithLocation sets the zone used to pick the default date.
func WithLocation(loc *time.Location) ScraperOption {
	return func(s *Scraper) {
		if loc != nil {
			s.location = loc
		}
	}
}

func WithClock(now func() time.Time) ScraperOption {
	return func(s *Scraper) { s.now = now }
}

func WithScraperLogger(l zerolog.Logger) ScraperOption {
	return func(s *Scraper) {
		s.log = l
		s.parser = NewParser(l)
	}
}

func NewScraper(f Fetcher, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		fetcher:  f,
		parser:   NewParser(zerolog.Nop()),
		log:      zerolog.Nop(),
		location: time.Local,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Scrape fetches and parses the duty page for opts. The returned result is a
// fresh snapshot; it is never cached here.
func (s *Scraper) Scrape(ctx context.Context, opts Options) (*Result, error) {
	opts.City = strings.TrimSpace(opts.City)
	opts.District = strings.TrimSpace(opts.District)
	if opts.City == "" {
		return nil, &ValidationError{Field: "city", Message: "city is required"}
	}
	if !plainName(opts.City) {
		return nil, &ValidationError{Field: "city", Message: "city must not contain path elements"}
	}
	if opts.District != "" && !plainName(opts.District) {
		return nil, &ValidationError{Field: "district", Message: "district must not contain path elements"}
	}
	if opts.Date == "" {
		opts.Date = s.now().In(s.location).Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, opts.Date); err != nil {
		return nil, &ValidationError{Field: "date", Message: "expected YYYY-MM-DD, got " + opts.Date}
	}

	districtLabel := opts.District
	if districtLabel == "" {
		districtLabel = AllDistricts
	}
	log := s.log.With().Str("city", opts.City).Str("district", districtLabel).Str("date", opts.Date).Logger()
	log.Info().Msg("scrape started")

	var districtSlug string
	if opts.District != "" {
		districtSlug = slug.Encode(opts.District)
	}
	raw, err := s.fetcher.Fetch(ctx, slug.Encode(opts.City), districtSlug)
	if err != nil {
		log.Error().Err(err).Msg("fetch failed")
		return nil, err
	}

	pharmacies, err := s.parser.Parse(bytes.NewReader(raw), opts.City, opts.District, opts.Date)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(pharmacies)).Msg("scrape finished")

	return &Result{
		City:       opts.City,
		District:   districtLabel,
		Date:       opts.Date,
		Pharmacies: pharmacies,
		ScrapedAt:  s.now().UTC(),
	}, nil
}

// plainName rejects separators and parent references; names end up in
// snapshot file names.
func plainName(name string) bool {
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
