package script

import "errors"

// Errors for script execution.
var (
	// ErrStateClosed is returned when running on a closed runner.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrInstructionLimit is returned when a script makes more API calls
	// than the configured limit.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")

	// ErrNoEditor is returned when the workspace has no active editor.
	ErrNoEditor = errors.New("no active editor")
)
