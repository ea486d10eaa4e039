package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedCSV is returned when the input is not readable as CSV
var ErrMalformedCSV = errors.New("malformed CSV")

// SchemaError reports required source columns absent from the header
type SchemaError struct {
	Missing []string `json:"missing"`
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// ParseError reports a value that could not be converted
type ParseError struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Err    error  `json:"-"`
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

// Unwrap returns the underlying conversion error
func (e *ParseError) Unwrap() error {
	return e.Err
}
