package buffer

import "errors"

var (
	// ErrNoData means the unconsumed region is empty. More bytes may still
	// arrive; callers should re-poll after the next Write.
	ErrNoData = errors.New("no data available")
	// ErrNoMatch means the delimiter has not appeared in the unconsumed
	// region yet. Callers should re-poll after the next Write.
	ErrNoMatch = errors.New("delimiter not found")
	// ErrMalformedBlock means the line-split postcondition inside
	// ExtractLines failed. This is an internal invariant violation, not a
	// recoverable parse error.
	ErrMalformedBlock = errors.New("malformed header block")
)
