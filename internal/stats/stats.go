// Package stats keeps the request and cache counters of one serving session.
package stats

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stats is owned by the server and handed to whoever records requests.
// It mirrors every count into a private Prometheus registry.
type Stats struct {
	requests atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64

	registry       *prometheus.Registry
	requestsTotal  prometheus.Counter
	lookupsTotal   *prometheus.CounterVec
	scrapeDuration prometheus.Histogram
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	TotalRequests int64  `json:"totalRequests"`
	CacheHits     int64  `json:"cacheHits"`
	CacheMisses   int64  `json:"cacheMisses"`
	HitRate       string `json:"hitRate"`
}

func New() *Stats {
	s := &Stats{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eczane_requests_total",
			Help: "Pharmacy lookups received.",
		}),
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eczane_cache_lookups_total",
			Help: "Cache lookups by outcome.",
		}, []string{"result"}),
		scrapeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eczane_scrape_duration_seconds",
			Help:    "Time spent fetching and parsing a duty page.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	s.registry.MustRegister(s.requestsTotal, s.lookupsTotal, s.scrapeDuration)
	return s
}

func (s *Stats) Request() {
	s.requests.Add(1)
	s.requestsTotal.Inc()
}

func (s *Stats) Hit() {
	s.hits.Add(1)
	s.lookupsTotal.WithLabelValues("hit").Inc()
}

func (s *Stats) Miss() {
	s.misses.Add(1)
	s.lookupsTotal.WithLabelValues("miss").Inc()
}

// ObserveScrape records how long one scrape took, in seconds.
func (s *Stats) ObserveScrape(seconds float64) {
	s.scrapeDuration.Observe(seconds)
}

func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		TotalRequests: s.requests.Load(),
		CacheHits:     s.hits.Load(),
		CacheMisses:   s.misses.Load(),
	}
	snap.HitRate = HitRate(snap.CacheHits, snap.TotalRequests)
	return snap
}

// HitRate formats hits/total as a percentage, "0%" when nothing was served.
func HitRate(hits, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.2f%%", float64(hits)/float64(total)*100)
}

// Handler serves the counters in Prometheus text format.
func (s *Stats) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
