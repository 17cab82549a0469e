package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/eczane/cache"
	"github.com/briangreenhill/eczane/eczane"
	"github.com/briangreenhill/eczane/internal/lookup"
	"github.com/briangreenhill/eczane/internal/stats"
)

const cityExample = "/api/pharmacies?city=İstanbul&district=Kadıköy"

// Looker resolves the pharmacies on duty for a city and district.
type Looker interface {
	Lookup(ctx context.Context, city, district string) (*lookup.Response, error)
}

type Server struct {
	Router  *chi.Mux
	Lookup  Looker
	Cache   cache.Clearer
	Stats   *stats.Stats
	Log     zerolog.Logger
	Started time.Time
	now     func() time.Time
}

type ServerOptions struct {
	Lookup Looker
	Cache  cache.Clearer
	Stats  *stats.Stats
	Log    zerolog.Logger
	Now    func() time.Time // optional
}

func New(opts ServerOptions) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(hlog.NewHandler(opts.Log))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	}))
	r.Use(chimw.Recoverer)

	s := &Server{Router: r, Lookup: opts.Lookup, Cache: opts.Cache, Stats: opts.Stats, Log: opts.Log, Started: now(), now: now}

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/pharmacies", s.handlePharmacies)
	r.Get("/api/cities", s.handleCities)
	r.Get("/api/stats", s.handleStats)
	r.Delete("/api/cache", s.handleClearCache)
	if opts.Stats != nil {
		r.Method(http.MethodGet, "/metrics", opts.Stats.Handler())
	}

	return s
}

// pharmacyView is the public shape of one on-duty pharmacy.
type pharmacyView struct {
	Name     string `json:"name"`
	Dist     string `json:"dist"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Loc      string `json:"loc"`
	DutyDate string `json:"dutyDate,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) handlePharmacies(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	district := strings.TrimSpace(r.URL.Query().Get("district"))

	resp, err := s.Lookup.Lookup(r.Context(), city, district)
	if err != nil {
		var ve *eczane.ValidationError
		if errors.As(err, &ve) {
			msg := ve.Error()
			if city == "" {
				msg = "İl (city) parametresi zorunludur"
			}
			writeJSON(w, r, http.StatusBadRequest, map[string]any{
				"success": false,
				"error":   msg,
				"example": cityExample,
			})
			return
		}
		hlog.FromRequest(r).Error().Err(err).Str("city", city).Str("district", district).Msg("lookup failed")
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]pharmacyView, 0, len(resp.OnDuty))
	for _, p := range resp.OnDuty {
		views = append(views, pharmacyView{
			Name:     p.Name,
			Dist:     p.District,
			Address:  p.Address,
			Phone:    p.Phone,
			DutyDate: p.DutyDate,
		})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "result": views})
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	cities := eczane.Cities()
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "count": len(cities), "cities": cities})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var snap stats.Snapshot
	if s.Stats != nil {
		snap = s.Stats.Snapshot()
	} else {
		snap.HitRate = stats.HitRate(0, 0)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "stats": snap})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))

	if date != "" {
		n, err := s.Cache.ClearByDate(date)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("date", date).Msg("clear cache by date")
			writeError(w, r, http.StatusInternalServerError, "Cache temizleme hatası")
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"success": true,
			"message": fmt.Sprintf("%s tarihli cache temizlendi", date),
			"removed": n,
		})
		return
	}

	// Clearing everything is best-effort; leftovers are logged, not fatal.
	n, err := s.Cache.ClearAll()
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Int("removed", n).Msg("some cache files could not be removed")
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": "Tüm cache temizlendi",
		"removed": n,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "OK",
		"uptime":    now.Sub(s.Started).Seconds(),
		"timestamp": now.UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "Eczane Scraper API",
		"version": "1.0.0",
		"endpoints": map[string]any{
			"GET /api/pharmacies": map[string]any{
				"description": "Nöbetçi eczaneleri sorgula",
				"params": map[string]string{
					"city":     "İl (zorunlu)",
					"district": "İlçe (opsiyonel)",
				},
				"example": cityExample,
			},
			"GET /api/cities": map[string]string{"description": "Tüm illeri listele"},
			"GET /api/stats":  map[string]string{"description": "Cache istatistikleri"},
			"DELETE /api/cache": map[string]any{
				"description": "Cache temizle",
				"params":      map[string]string{"date": "Belirli bir tarihi temizle (opsiyonel)"},
			},
			"GET /health":  map[string]string{"description": "Servis sağlık durumu"},
			"GET /metrics": map[string]string{"description": "Prometheus metrikleri"},
		},
	})
}
