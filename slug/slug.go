// Package slug turns human city and district names into the path tokens
// used by the duty pharmacy site.
package slug

import (
	"strings"
)

// fold maps Turkish letters to their plain ASCII form. It runs before
// lowercasing so that 'İ' does not turn into "i" plus a combining dot.
var fold = map[rune]rune{
	'ç': 'c', 'ğ': 'g', 'ı': 'i', 'ö': 'o', 'ş': 's', 'ü': 'u',
	'Ç': 'c', 'Ğ': 'g', 'İ': 'i', 'Ö': 'o', 'Ş': 's', 'Ü': 'u',
}

// Encode returns the URL slug for name. It never fails; anything that is not
// an ASCII letter or digit after folding becomes a separator.
func Encode(name string) string {
	folded := strings.Map(func(r rune) rune {
		if f, ok := fold[r]; ok {
			return f
		}
		return r
	}, name)
	folded = strings.ToLower(folded)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
