package memhost

import "errors"

// Errors returned by buffer and editor operations.
var (
	// ErrRangeInvalid indicates a range outside the buffer or with end < start.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrEditsOverlap indicates two edits in one batch overlap.
	ErrEditsOverlap = errors.New("edits overlap")

	// ErrEventLoop indicates Drain stopped because events kept producing
	// more events.
	ErrEventLoop = errors.New("event queue did not settle")
)
