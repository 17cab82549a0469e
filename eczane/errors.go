package eczane

import "fmt"

// FetchError is returned when the source page could not be retrieved.
// StatusCode is zero when no response was received at all.
type FetchError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("http error: %s", e.Message)
	}
	return fmt.Sprintf("http error: %d - %s", e.StatusCode, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseRowError describes a single table row that could not be extracted.
// The parser logs it and moves on.
type ParseRowError struct {
	Tab   int
	Row   int
	Cause any
}

func (e *ParseRowError) Error() string {
	return fmt.Sprintf("parse row %d in tab %d: %v", e.Row, e.Tab, e.Cause)
}

// ValidationError rejects scrape options before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
