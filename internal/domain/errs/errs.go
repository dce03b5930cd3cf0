// Package errs defines the error kinds shared by the aggregation core.
// Callers classify failures with errors.Is.
package errs

import "errors"

var (
	// ErrRange reports a window index outside the partition sums.
	ErrRange = errors.New("range error")
	// ErrInvalidArgument reports an unknown view or inconsistent partition scheme.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyInput reports an extremum request over no values.
	ErrEmptyInput = errors.New("empty input")
	// ErrParse reports a malformed colour string.
	ErrParse = errors.New("parse error")
	// ErrNotFound reports a history source without data for the requested range.
	ErrNotFound = errors.New("not found")
)

// IsClientError reports whether err stems from bad caller input rather than
// an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRange) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrParse)
}
