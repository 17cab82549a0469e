package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/eczane/eczane"
)

var istanbul = time.FixedZone("TRT", 3*60*60)

const (
	mondayNight  = "2 Şubat Pazartesi akşamından 3 Şubat Salı sabahına kadar."
	tuesdayNight = "3 Şubat Salı akşamından 4 Şubat Çarşamba sabahına kadar."
	wedNight     = "4 Şubat Çarşamba akşamından 5 Şubat Perşembe sabahına kadar."
)

func records() []eczane.Pharmacy {
	return []eczane.Pharmacy{
		{Name: "Dün Eczanesi", DutyDate: mondayNight},
		{Name: "Bugün Eczanesi", DutyDate: tuesdayNight},
		{Name: "Yarın Eczanesi", DutyDate: wedNight},
		{Name: "Belirsiz Eczanesi"},
	}
}

func names(ps []eczane.Pharmacy) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestStartDay(t *testing.T) {
	tests := []struct {
		ref      time.Time
		expected string
	}{
		{time.Date(2026, 2, 3, 8, 0, 0, 0, istanbul), "2026-02-03"},
		{time.Date(2026, 2, 3, 7, 59, 59, 0, istanbul), "2026-02-02"},
		{time.Date(2026, 2, 3, 23, 30, 0, 0, istanbul), "2026-02-03"},
		{time.Date(2026, 2, 3, 0, 0, 0, 0, istanbul), "2026-02-02"},
		{time.Date(2026, 3, 1, 3, 0, 0, 0, istanbul), "2026-02-28"},
		{time.Date(2026, 1, 1, 6, 0, 0, 0, istanbul), "2025-12-31"},
	}

	for _, tt := range tests {
		result := StartDay(tt.ref).Format("2006-01-02")
		if result != tt.expected {
			t.Errorf("StartDay(%s) = %s, want %s", tt.ref, result, tt.expected)
		}
	}
}

func TestSelectAtEightSelectsToday(t *testing.T) {
	got := Select(records(), time.Date(2026, 2, 3, 8, 0, 0, 0, istanbul))
	assert.Equal(t, []string{"Bugün Eczanesi", "Belirsiz Eczanesi"}, names(got))
}

func TestSelectBeforeEightSelectsYesterday(t *testing.T) {
	got := Select(records(), time.Date(2026, 2, 3, 7, 59, 0, 0, istanbul))
	assert.Equal(t, []string{"Dün Eczanesi", "Belirsiz Eczanesi"}, names(got))
}

func TestSelectIdempotent(t *testing.T) {
	ref := time.Date(2026, 2, 4, 21, 0, 0, 0, istanbul)
	once := Select(records(), ref)
	twice := Select(once, ref)
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"Yarın Eczanesi", "Belirsiz Eczanesi"}, names(once))
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	in := records()
	_ = Select(in, time.Date(2026, 2, 3, 12, 0, 0, 0, istanbul))
	assert.Equal(t, records(), in)
}

func TestSelectCaseInsensitive(t *testing.T) {
	in := []eczane.Pharmacy{
		{Name: "Büyük Harf", DutyDate: "3 ŞUBAT SALI AKŞAMINDAN 4 ŞUBAT ÇARŞAMBA SABAHINA KADAR."},
		{Name: "Karışık", DutyDate: "3   şUBAT salı   Akşamından"},
	}
	got := Select(in, time.Date(2026, 2, 3, 15, 0, 0, 0, istanbul))
	assert.Equal(t, []string{"Büyük Harf", "Karışık"}, names(got))
}

func TestSelectDayBoundary(t *testing.T) {
	in := []eczane.Pharmacy{
		{Name: "Onüç", DutyDate: "13 Şubat Cuma akşamından 14 Şubat Cumartesi sabahına kadar."},
		{Name: "Üç", DutyDate: tuesdayNight},
	}
	got := Select(in, time.Date(2026, 2, 3, 15, 0, 0, 0, istanbul))
	assert.Equal(t, []string{"Üç"}, names(got))
}

func TestSelectMorningPhraseDoesNotMatch(t *testing.T) {
	// "3 Şubat Salı sabahına" is the end of Monday's window, not a start.
	in := []eczane.Pharmacy{{Name: "Dün Eczanesi", DutyDate: mondayNight}}
	got := Select(in, time.Date(2026, 2, 3, 15, 0, 0, 0, istanbul))
	assert.Empty(t, got)
}

func TestPattern(t *testing.T) {
	re := Pattern(time.Date(2026, 8, 9, 10, 0, 0, 0, istanbul))
	require.NotNil(t, re)
	assert.True(t, re.MatchString("9 ağustos pazar akşamından 10 ağustos pazartesi sabahına kadar."))
	assert.False(t, re.MatchString("19 ağustos çarşamba akşamından"))
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "ocak", MonthName(time.January))
	assert.Equal(t, "şubat", MonthName(time.February))
	assert.Equal(t, "aralık", MonthName(time.December))
}
