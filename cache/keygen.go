package cache

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/briangreenhill/eczane/eczane"
)

const (
	keyPrefix = "eczane_"
	fileExt   = ".json"
	tmpInfix  = ".tmp."

	// stampLayout is a fixed-width UTC instant, so file names of one key
	// sort chronologically.
	stampLayout = "2006-01-02T15:04:05.000Z"
)

// ErrUnsafeName is returned when a key would resolve outside the cache
// directory.
var ErrUnsafeName = errors.New("file name is not local to the cache directory")

var stampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Key returns the cache key for a tuple. City and district are used as given;
// "İstanbul" and "istanbul" are different keys.
func Key(city, district, date string) string {
	if district == "" {
		district = eczane.AllDistricts
	}
	return keyPrefix + city + "_" + district + "_" + date
}

// Filename returns the snapshot file name for key captured at t, e.g.
// eczane_Ankara_All_2026-02-03_2026-02-03T10-30-00-000Z.json.
func Filename(key string, t time.Time) string {
	return key + "_" + stampReplacer.Replace(t.UTC().Format(stampLayout)) + fileExt
}

// matchesKey reports whether name is a snapshot file of key.
func matchesKey(name, key string) bool {
	return strings.HasPrefix(name, key+"_") && strings.HasSuffix(name, fileExt)
}

// localName reports whether name stays a single entry inside the cache
// directory once joined to it.
func localName(name string) bool {
	return filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}
