// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/briangreenhill/eczane/cache"
	"github.com/briangreenhill/eczane/eczane"
	"github.com/briangreenhill/eczane/internal/config"
	"github.com/briangreenhill/eczane/internal/http/routes"
	"github.com/briangreenhill/eczane/internal/logging"
	"github.com/briangreenhill/eczane/internal/lookup"
	"github.com/briangreenhill/eczane/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config error")
	}

	// Logger
	logger := logging.New(cfg.Log)
	loc, _ := cfg.Location() // validated by Load

	// Source client
	httpClient := &http.Client{Transport: eczane.NewTransport()}
	if cfg.Source.HTTPCache {
		transport := httpcache.NewMemoryCacheTransport()
		transport.Transport = eczane.NewTransport()
		httpClient = &http.Client{Transport: transport}
	}
	clientOpts := []eczane.Option{
		eczane.WithHTTPClient(httpClient),
		eczane.WithBaseURL(cfg.Source.BaseURL),
		eczane.WithUserAgent(cfg.Source.UserAgent),
		eczane.WithLogger(logger),
	}
	if cfg.Source.RateLimit > 0 {
		clientOpts = append(clientOpts, eczane.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Source.RateLimit), cfg.Source.RateBurst)))
	}
	client := eczane.NewClient(clientOpts...)
	scraper := eczane.NewScraper(client, eczane.WithLocation(loc), eczane.WithScraperLogger(logger))

	// Snapshot cache
	store := cache.NewFileCache(cfg.CacheDir, cache.WithLogger(logger))

	// Counters for this server's lifetime
	st := stats.New()

	svc := &lookup.Service{Cache: store, Scraper: scraper, Stats: st, Location: loc, Log: logger}
	s := routes.New(routes.ServerOptions{
		Lookup: svc,
		Cache:  store,
		Stats:  st,
		Log:    logger,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: s.Router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("cache_dir", cfg.CacheDir).
			Str("source", cfg.Source.BaseURL).
			Msg("starting eczane api")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	snap := st.Snapshot()
	logger.Info().
		Int64("total_requests", snap.TotalRequests).
		Int64("cache_hits", snap.CacheHits).
		Int64("cache_misses", snap.CacheMisses).
		Str("hit_rate", snap.HitRate).
		Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
