package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/eczane/cache"
	"github.com/briangreenhill/eczane/eczane"
	"github.com/briangreenhill/eczane/internal/lookup"
	"github.com/briangreenhill/eczane/internal/stats"
)

type fakeLooker struct {
	resp *lookup.Response
	err  error
	st   *stats.Stats
}

func (f *fakeLooker) Lookup(ctx context.Context, city, district string) (*lookup.Response, error) {
	if f.st != nil {
		f.st.Request()
	}
	if city == "" {
		return nil, &eczane.ValidationError{Field: "city", Message: "city is required"}
	}
	return f.resp, f.err
}

func newTestServer(t *testing.T, l *fakeLooker, dir string) (*Server, *stats.Stats) {
	t.Helper()
	st := stats.New()
	l.st = st
	started := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	calls := 0
	s := New(ServerOptions{
		Lookup: l,
		Cache:  cache.NewFileCache(dir),
		Stats:  st,
		Log:    zerolog.Nop(),
		Now: func() time.Time {
			calls++
			if calls == 1 {
				return started
			}
			return started.Add(90 * time.Second)
		},
	})
	return s, st
}

func do(t *testing.T, s *Server, method, target string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestPharmacies(t *testing.T) {
	l := &fakeLooker{resp: &lookup.Response{
		OnDuty: []eczane.Pharmacy{
			{Name: "Gaye Eczanesi", District: "Kadıköy", Address: "Caddebostan", Phone: "0 (216) 360-64-45", DutyDate: "3 Şubat Salı akşamından 4 Şubat Çarşamba sabahına kadar."},
		},
	}}
	s, _ := newTestServer(t, l, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/api/pharmacies?city=%C4%B0stanbul&district=Kad%C4%B1k%C3%B6y")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	result := body["result"].([]any)
	require.Len(t, result, 1)
	p := result[0].(map[string]any)
	assert.Equal(t, "Gaye Eczanesi", p["name"])
	assert.Equal(t, "Kadıköy", p["dist"])
	assert.Equal(t, "", p["loc"])
	assert.Equal(t, "3 Şubat Salı akşamından 4 Şubat Çarşamba sabahına kadar.", p["dutyDate"])
}

func TestPharmaciesMissingCity(t *testing.T) {
	s, _ := newTestServer(t, &fakeLooker{}, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/api/pharmacies")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, cityExample, body["example"])
}

func TestPharmaciesPathLikeDistrict(t *testing.T) {
	l := &fakeLooker{err: &eczane.ValidationError{Field: "district", Message: "district must not contain path elements"}}
	s, _ := newTestServer(t, l, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/api/pharmacies?city=Ankara&district=..%2F..%2Fx")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "district")
}

func TestPharmaciesFetchError(t *testing.T) {
	l := &fakeLooker{err: &eczane.FetchError{StatusCode: 503, Message: "503 Service Unavailable"}}
	s, _ := newTestServer(t, l, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/api/pharmacies?city=Ankara")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "503")
}

func TestCities(t *testing.T) {
	s, _ := newTestServer(t, &fakeLooker{}, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/api/cities")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(len(eczane.Cities())), body["count"])
	assert.Contains(t, body["cities"], "İstanbul")
}

func TestStats(t *testing.T) {
	l := &fakeLooker{resp: &lookup.Response{}}
	s, st := newTestServer(t, l, t.TempDir())
	st.Hit()

	do(t, s, http.MethodGet, "/api/pharmacies?city=Ankara")
	rec, body := do(t, s, http.MethodGet, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	got := body["stats"].(map[string]any)
	assert.Equal(t, float64(1), got["totalRequests"])
	assert.Equal(t, float64(1), got["cacheHits"])
	assert.Equal(t, "100.00%", got["hitRate"])
}

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"eczane_Ankara_All_2026-02-03_2026-02-03T08-00-00-000Z.json",
		"eczane_Ankara_All_2026-02-04_2026-02-04T08-00-00-000Z.json",
		"eczane_Van_All_2026-02-04_2026-02-04T09-00-00-000Z.json",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("{}"), 0o644))
	}
	s, _ := newTestServer(t, &fakeLooker{}, dir)

	rec, body := do(t, s, http.MethodDelete, "/api/cache?date=2026-02-03")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["removed"])
	assert.Equal(t, "2026-02-03 tarihli cache temizlendi", body["message"])

	rec, body = do(t, s, http.MethodDelete, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["removed"])

	left, _ := os.ReadDir(dir)
	assert.Empty(t, left)
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &fakeLooker{}, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, float64(90), body["uptime"])
}

func TestMetrics(t *testing.T) {
	s, st := newTestServer(t, &fakeLooker{}, t.TempDir())
	st.Miss()

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `eczane_cache_lookups_total{result="miss"} 1`)
}

func TestIndex(t *testing.T) {
	s, _ := newTestServer(t, &fakeLooker{}, t.TempDir())

	rec, body := do(t, s, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Eczane Scraper API", body["name"])
}
