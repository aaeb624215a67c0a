package annotation

import "errors"

// Errors returned by Validate.
var (
	// ErrEmptyPayload indicates there is no expression text to wrap.
	ErrEmptyPayload = errors.New("empty expression")

	// ErrMultiLine indicates the expression text spans more than one line.
	ErrMultiLine = errors.New("expression spans multiple lines")

	// ErrContainsDelimiter indicates the expression text contains a reserved
	// delimiter literal and could not be parsed back.
	ErrContainsDelimiter = errors.New("expression contains a reserved delimiter")
)
