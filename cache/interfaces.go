// Package cache stores scrape snapshots as timestamped JSON files keyed by
// city, district and date.
package cache

import (
	"fmt"

	"github.com/briangreenhill/eczane/eczane"
)

// Reader defines the interface for reading snapshots
type Reader interface {
	// Get returns the latest snapshot for the tuple, false on a miss.
	// Unreadable or corrupt files count as a miss.
	Get(city, district, date string) (*eczane.Result, bool)
}

// Writer defines the interface for writing snapshots
type Writer interface {
	// Set persists result under a new file and returns its path
	Set(result *eczane.Result) (string, error)
}

// Clearer evicts snapshots
type Clearer interface {
	ClearAll() (int, error)
	ClearByDate(date string) (int, error)
}

// Store is the main interface that combines all cache operations
type Store interface {
	Reader
	Writer
	Clearer
}

// ReadError is logged when a snapshot file exists but cannot be used.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("cache read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is returned when a snapshot could not be stored.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cache write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
