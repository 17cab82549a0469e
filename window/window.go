// Package window picks the duty window that is running at a given instant.
//
// Duty windows run from one day's evening to the next day's morning and the
// page announces them as e.g. "3 Şubat Salı akşamından 4 Şubat Çarşamba
// sabahına kadar." Before 08:00 the window that started the previous evening
// is still running; from 08:00 on, the one starting this evening is current.
package window

import (
	"fmt"
	"regexp"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/briangreenhill/eczane/eczane"
)

// MorningCutoff is the hour at which the previous night's window ends.
const MorningCutoff = 8

var months = [...]string{
	"ocak", "şubat", "mart", "nisan", "mayıs", "haziran",
	"temmuz", "ağustos", "eylül", "ekim", "kasım", "aralık",
}

// MonthName returns the lowercase Turkish name of m.
func MonthName(m time.Month) string {
	return months[m-1]
}

// StartDay returns the calendar day on which the window running at ref
// started, in ref's location.
func StartDay(ref time.Time) time.Time {
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location())
	if ref.Hour() < MorningCutoff {
		return day.AddDate(0, 0, -1)
	}
	return day
}

// Pattern matches the announcement of the window that starts on the start
// day of ref: "<day> <month> <weekday> akşamından". The day must not be the
// tail of a longer number, so 13 Şubat does not match the 3rd.
func Pattern(ref time.Time) *regexp.Regexp {
	start := StartDay(ref)
	// (?:^|\D): a bare substring match would let day 3 hit "13 Şubat".
	return regexp.MustCompile(fmt.Sprintf(`(?i)(?:^|\D)%d\s+%s\s+\S+\s+akşamından`,
		start.Day(), regexp.QuoteMeta(MonthName(start.Month()))))
}

// Select keeps the pharmacies on duty in the window running at ref.
// Pharmacies without a duty text are always kept. records is not modified.
func Select(records []eczane.Pharmacy, ref time.Time) []eczane.Pharmacy {
	re := Pattern(ref)
	lower := cases.Lower(language.Turkish)

	out := make([]eczane.Pharmacy, 0, len(records))
	for _, p := range records {
		if p.DutyDate == "" || re.MatchString(lower.String(p.DutyDate)) {
			out = append(out, p)
		}
	}
	return out
}
