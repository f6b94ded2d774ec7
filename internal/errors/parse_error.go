package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports an input row whose absence field or columns could not be
// interpreted. Row is the spreadsheet row number of the input line (header = 1).
type ParseError struct {
	Row    int
	Raw    string
	Reason string
	Cause  error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("row %d: %s (%q)", e.Row, e.Reason, e.Raw)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a ParseError for the given row and raw field text
func NewParseError(row int, raw, reason string, cause error) *ParseError {
	return &ParseError{Row: row, Raw: raw, Reason: reason, Cause: cause}
}

// AsParseError extracts a ParseError from an error chain
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// ParseErrors is the report of rows skipped under the skip policy
type ParseErrors []*ParseError

// Error implements the error interface
func (pe ParseErrors) Error() string {
	switch len(pe) {
	case 0:
		return "no parse errors"
	case 1:
		return pe[0].Error()
	}
	parts := make([]string, len(pe))
	for i, e := range pe {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d rows could not be parsed: %s", len(pe), strings.Join(parts, "; "))
}

// Rows returns the row numbers of all collected errors
func (pe ParseErrors) Rows() []int {
	rows := make([]int, len(pe))
	for i, e := range pe {
		rows[i] = e.Row
	}
	return rows
}
