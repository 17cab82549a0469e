package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/briangreenhill/eczane/cache"
	"github.com/briangreenhill/eczane/eczane"
	"github.com/briangreenhill/eczane/internal/report"
)

type deps struct {
	Fetcher  eczane.Fetcher
	Location *time.Location
	Log      zerolog.Logger
	OutDir   string           // default for --out
	Now      func() time.Time // optional
}

var errMissingCity = errors.New("city is required")

func newRootCmd(d deps) *cobra.Command {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.OutDir == "" {
		d.OutDir = "./output"
	}

	var city, district, date, out string

	cmd := &cobra.Command{
		Use:   "eczane-scrape",
		Short: "Fetch today's on-duty pharmacies once and save them",
		Long: `Scrapes the duty pharmacy listing for a city (and optionally a district),
stores the snapshot as JSON and writes a plain-text report next to it.`,
		Example:       "  eczane-scrape --city İstanbul --district Kadıköy",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(city) == "" {
				w := cmd.ErrOrStderr()
				fmt.Fprintln(w, "Hata: --city parametresi zorunludur")
				fmt.Fprintln(w)
				fmt.Fprint(w, cmd.UsageString())
				fmt.Fprintln(w)
				fmt.Fprintln(w, "İller: "+strings.Join(eczane.Cities(), ", "))
				return errMissingCity
			}

			scraper := eczane.NewScraper(d.Fetcher,
				eczane.WithLocation(d.Location),
				eczane.WithClock(d.Now),
				eczane.WithScraperLogger(d.Log),
			)
			result, err := scraper.Scrape(cmd.Context(), eczane.Options{City: city, District: district, Date: date})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Hata: %v\n", err)
				return err
			}

			store := cache.NewFileCache(out, cache.WithLogger(d.Log), cache.WithClock(d.Now))
			jsonPath, err := store.Set(result)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Hata: %v\n", err)
				return err
			}
			reportPath, err := report.SaveSummary(out, result, d.Location, d.Now())
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Hata: %v\n", err)
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d eczane bulundu\n", len(result.Pharmacies))
			fmt.Fprintf(w, "JSON: %s\n", jsonPath)
			fmt.Fprintf(w, "Rapor: %s\n", reportPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "il adı (zorunlu)")
	cmd.Flags().StringVar(&district, "district", "", "ilçe adı")
	cmd.Flags().StringVar(&date, "date", "", "tarih, YYYY-MM-DD (varsayılan: bugün)")
	cmd.Flags().StringVar(&out, "out", d.OutDir, "çıktı dizini")

	return cmd
}
