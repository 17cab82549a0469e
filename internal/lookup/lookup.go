// Package lookup answers "who is on duty now" by combining the snapshot
// cache, the scraper and the window selector.
package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/eczane/cache"
	"github.com/briangreenhill/eczane/eczane"
	"github.com/briangreenhill/eczane/internal/stats"
	"github.com/briangreenhill/eczane/window"
)

// Scraper is satisfied by *eczane.Scraper.
type Scraper interface {
	Scrape(ctx context.Context, opts eczane.Options) (*eczane.Result, error)
}

type Service struct {
	Cache    cache.Store
	Scraper  Scraper
	Stats    *stats.Stats
	Location *time.Location
	Now      func() time.Time
	Log      zerolog.Logger
}

// Response is a snapshot plus the pharmacies on duty right now.
type Response struct {
	Result    *eczane.Result
	OnDuty    []eczane.Pharmacy
	FromCache bool
	Duration  time.Duration
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) location() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

// Lookup serves today's snapshot for city and district, scraping and
// storing a new one on a miss. A write failure on a miss is returned as an
// error. Concurrent misses for the same key each scrape and write.
func (s *Service) Lookup(ctx context.Context, city, district string) (*Response, error) {
	start := s.now()
	now := start.In(s.location())
	date := now.Format(eczane.DateLayout)

	if s.Stats != nil {
		s.Stats.Request()
	}
	if city == "" {
		return nil, &eczane.ValidationError{Field: "city", Message: "city is required"}
	}

	log := s.Log.With().Str("city", city).Str("district", district).Str("date", date).Logger()

	result, fromCache := s.Cache.Get(city, district, date)
	if fromCache {
		if s.Stats != nil {
			s.Stats.Hit()
		}
		log.Info().Msg("cache hit")
	} else {
		if s.Stats != nil {
			s.Stats.Miss()
		}
		log.Info().Msg("cache miss, scraping")

		scrapeStart := time.Now()
		var err error
		result, err = s.Scraper.Scrape(ctx, eczane.Options{City: city, District: district, Date: date})
		if err != nil {
			return nil, err
		}
		if s.Stats != nil {
			s.Stats.ObserveScrape(time.Since(scrapeStart).Seconds())
		}

		if _, err := s.Cache.Set(result); err != nil {
			return nil, fmt.Errorf("store snapshot: %w", err)
		}
	}

	onDuty := window.Select(result.Pharmacies, now)
	log.Info().
		Int("on_duty", len(onDuty)).
		Int("total", len(result.Pharmacies)).
		Str("window_start", window.StartDay(now).Format(eczane.DateLayout)).
		Msg("duty window selected")

	return &Response{
		Result:    result,
		OnDuty:    onDuty,
		FromCache: fromCache,
		Duration:  s.now().Sub(start),
	}, nil
}
