package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/eczane/eczane"
)

// FileCache implements the Store interface using one flat directory
type FileCache struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

type Option func(*FileCache)

func WithLogger(l zerolog.Logger) Option {
	return func(fc *FileCache) { fc.log = l }
}

// WithClock overrides the capture instant used in file names.
func WithClock(now func() time.Time) Option {
	return func(fc *FileCache) { fc.now = now }
}

// NewFileCache creates a cache rooted at dir. The directory is created on
// the first write.
func NewFileCache(dir string, opts ...Option) *FileCache {
	fc := &FileCache{dir: dir, log: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(fc)
	}
	return fc
}

// Dir returns the cache root.
func (fc *FileCache) Dir() string {
	return fc.dir
}

// Get implements Reader interface. When several snapshots exist for the
// key, the most recently captured one is returned.
func (fc *FileCache) Get(city, district, date string) (*eczane.Result, bool) {
	key := Key(city, district, date)
	names, err := fc.list()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fc.log.Warn().Err(&ReadError{Path: fc.dir, Err: err}).Msg("cache scan failed")
		}
		return nil, false
	}

	var matches []string
	for _, name := range names {
		if matchesKey(name, key) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return nil, false
	}
	sort.Strings(matches)
	latest := matches[len(matches)-1]

	path := fc.path(latest)
	data, err := os.ReadFile(path)
	if err != nil {
		fc.log.Warn().Err(&ReadError{Path: path, Err: err}).Msg("cache read failed")
		return nil, false
	}

	var result eczane.Result
	if err := json.Unmarshal(data, &result); err != nil {
		fc.log.Warn().Err(&ReadError{Path: path, Err: err}).Msg("corrupt cache file ignored")
		return nil, false
	}

	fc.log.Info().Str("file", latest).Msg("cache hit")
	return &result, true
}

// Set implements Writer interface
func (fc *FileCache) Set(result *eczane.Result) (string, error) {
	key := Key(result.City, result.District, result.Date)
	name := Filename(key, fc.now())
	if !localName(name) {
		return "", &WriteError{Path: name, Err: ErrUnsafeName}
	}

	if err := os.MkdirAll(fc.dir, 0o755); err != nil {
		return "", &WriteError{Path: fc.dir, Err: err}
	}
	path := fc.path(name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := path + fmt.Sprintf("%s%d", tmpInfix, rand.Int())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", &WriteError{Path: path, Err: err}
	}

	fc.log.Info().Str("file", filepath.Base(path)).Msg("cache written")
	return path, nil
}

// ClearAll removes every snapshot, including temp files left by an
// interrupted Set. It keeps going past individual failures
// and returns them joined together with the number of files removed.
func (fc *FileCache) ClearAll() (int, error) {
	return fc.removeWhere(func(string) bool { return true })
}

// ClearByDate removes every snapshot whose file name contains date.
func (fc *FileCache) ClearByDate(date string) (int, error) {
	return fc.removeWhere(func(name string) bool { return strings.Contains(name, date) })
}

func (fc *FileCache) removeWhere(match func(name string) bool) (int, error) {
	names, err := fc.list()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var (
		removed int
		errs    []error
	)
	for _, name := range names {
		if !isSnapshotFile(name) || !match(name) {
			continue
		}
		if err := os.Remove(fc.path(name)); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	fc.log.Info().Int("removed", removed).Int("failed", len(errs)).Msg("cache cleared")
	return removed, errors.Join(errs...)
}

// isSnapshotFile matches finished snapshots and the temp files Set renames
// into place.
func isSnapshotFile(name string) bool {
	return strings.HasSuffix(name, fileExt) || strings.Contains(name, fileExt+tmpInfix)
}

func (fc *FileCache) list() ([]string, error) {
	entries, err := os.ReadDir(fc.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// path generates the full filesystem path for a file name
func (fc *FileCache) path(name string) string {
	return filepath.Join(fc.dir, name)
}
