// cmd/scrape/main.go
package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/briangreenhill/eczane/eczane"
	"github.com/briangreenhill/eczane/internal/config"
	"github.com/briangreenhill/eczane/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("config error")
	}
	logger := logging.New(cfg.Log)
	loc, _ := cfg.Location()

	clientOpts := []eczane.Option{
		eczane.WithHTTPClient(&http.Client{Transport: eczane.NewTransport()}),
		eczane.WithBaseURL(cfg.Source.BaseURL),
		eczane.WithUserAgent(cfg.Source.UserAgent),
		eczane.WithLogger(logger),
	}
	if cfg.Source.RateLimit > 0 {
		clientOpts = append(clientOpts, eczane.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.Source.RateLimit), cfg.Source.RateBurst)))
	}
	client := eczane.NewClient(clientOpts...)

	cmd := newRootCmd(deps{
		Fetcher:  client,
		Location: loc,
		Log:      logger,
		OutDir:   cfg.CacheDir,
	})
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
