package controller

import (
	"errors"
	"fmt"

	"github.com/dshills/compactlog/internal/annotation"
)

// User-facing errors from Toggle.
var (
	// ErrSelectWord indicates an empty selection with no word under the cursor.
	ErrSelectWord = errors.New("please select a single word")

	// ErrSelectLine indicates a selection spanning several lines.
	ErrSelectLine = errors.New("please select a single line")
)

// Internal errors.
var (
	// ErrNoEditor indicates there is no active editor.
	ErrNoEditor = errors.New("no active editor")

	// ErrNotDecorated indicates an operation on an annotation that has no
	// registered decorations. It signals a bookkeeping bug.
	ErrNotDecorated = errors.New("annotation has no registered decorations")
)

// OperationError reports a failed controller operation.
type OperationError struct {
	Op  string // Operation name, e.g. "toggle", "patch"
	ID  string // Annotation id, if any
	Err error
}

func (e *OperationError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// isUserError reports whether err should be shown to the user rather than
// logged as a failure.
func isUserError(err error) bool {
	return errors.Is(err, ErrSelectWord) || errors.Is(err, ErrSelectLine) ||
		errors.Is(err, annotation.ErrEmptyPayload) || errors.Is(err, annotation.ErrMultiLine) ||
		errors.Is(err, annotation.ErrContainsDelimiter)
}
