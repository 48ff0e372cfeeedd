package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNotRendered is returned when Edit is handed a form that has not been
	// rendered, so no controls are bound.
	ErrNotRendered = errors.New("prompt: form is not rendered")
)
