package link

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a notation error.
type ErrorKind string

const (
	ErrEmptyLink             ErrorKind = "empty_link"
	ErrNoHashSeparator       ErrorKind = "no_hash_separator"
	ErrPathEmpty             ErrorKind = "path_empty"
	ErrInvalidLineFormat     ErrorKind = "invalid_line_format"
	ErrInvalidRangeFormat    ErrorKind = "invalid_range_format"
	ErrLineNumberOutOfBounds ErrorKind = "line_number_out_of_bounds"
	ErrCharOutOfBounds       ErrorKind = "character_out_of_bounds"
	ErrRangeOutOfOrder       ErrorKind = "range_out_of_order"
	ErrInvalidRectangular    ErrorKind = "invalid_rectangular"
	ErrDelimitersAmbiguous   ErrorKind = "delimiters_ambiguous"
	ErrInvalidConfig         ErrorKind = "invalid_config"
)

// Error is returned when text is not a valid link. It names the failing
// function and carries enough detail to log or discard the candidate.
type Error struct {
	Kind     ErrorKind
	Function string
	Input    string
	// Offending is the substring that failed, when one can be singled out.
	Offending string
	Expected  string
	Actual    string
	Cause     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Function, e.Kind)
	if e.Offending != "" {
		fmt.Fprintf(&b, " at %q", e.Offending)
	}
	if e.Expected != "" {
		fmt.Fprintf(&b, ": expected %s", e.Expected)
		if e.Actual != "" {
			fmt.Fprintf(&b, ", got %s", e.Actual)
		}
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so callers can test with
// errors.Is(err, &link.Error{Kind: link.ErrNoHashSeparator}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of a notation error, or "" for anything else.
func KindOf(err error) ErrorKind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// FormatErrorKind classifies a formatting failure.
type FormatErrorKind string

const (
	ErrEmptySelections     FormatErrorKind = "empty_selections"
	ErrNegativeCharacter   FormatErrorKind = "negative_character"
	ErrInvalidLine         FormatErrorKind = "invalid_line"
	ErrInvalidCharacter    FormatErrorKind = "invalid_character"
	ErrFormatInvalidConfig FormatErrorKind = "invalid_config"
)

// FormatError reports caller input the formatter cannot encode. These point
// at a bug in the caller rather than bad user data.
type FormatError struct {
	Kind     FormatErrorKind
	Function string
	// Index is the offending selection, or -1.
	Index  int
	Detail string
	Cause  error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Function, e.Kind)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" (selection %d)", e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Cause
}
