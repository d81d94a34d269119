package csvimport

import (
	"errors"
	"fmt"
)

// Row-level error codes surfaced in import results.
const (
	ErrCodeImportCSVParsing    = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportRequiredField = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType   = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidRange  = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportDuplicate     = "ERR_IMPORT_DUPLICATE"
)

var (
	// ErrEmptyFile is returned when the CSV payload has no content
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the payload is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when the CSV has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")
)

// RowError describes a problem with a single CSV row. Row numbers include
// the header line.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError for the given row and column.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection accumulates row errors up to a cap so a pathological file
// cannot balloon the response. TotalCount keeps counting past the cap.
type ErrorCollection struct {
	limit  int
	errors []RowError
	total  int
}

// NewErrorCollection creates a collection retaining at most limit errors.
func NewErrorCollection(limit int) *ErrorCollection {
	if limit <= 0 {
		limit = 100
	}
	return &ErrorCollection{limit: limit}
}

// Add records an error, dropping it when the retention cap is reached.
func (c *ErrorCollection) Add(err RowError) {
	c.total++
	if len(c.errors) < c.limit {
		c.errors = append(c.errors, err)
	}
}

// Errors returns the retained errors.
func (c *ErrorCollection) Errors() []RowError {
	return c.errors
}

// TotalCount returns the number of errors seen, retained or not.
func (c *ErrorCollection) TotalCount() int {
	return c.total
}

// IsTruncated reports whether errors were dropped at the cap.
func (c *ErrorCollection) IsTruncated() bool {
	return c.total > len(c.errors)
}
