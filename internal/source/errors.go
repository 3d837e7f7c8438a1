package source

import "errors"

var (
	// ErrUnavailable covers an unreachable or unauthorized data source.
	ErrUnavailable = errors.New("response source unavailable")
	// ErrMalformedHeader means the worksheet is missing the name column or
	// one of the required question columns.
	ErrMalformedHeader = errors.New("malformed response header")
	// ErrNoResponses means the source was readable but held no usable rows.
	ErrNoResponses = errors.New("no valid responses found")
)
