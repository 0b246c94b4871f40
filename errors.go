package mdview

import "errors"

// Sentinel errors for session operations.
var (
	ErrEmptyDocument   = errors.New("document URL cannot be empty")
	ErrInvalidDocument = errors.New("invalid document URL")
	ErrOpen            = errors.New("opening document failed")
	ErrRender          = errors.New("render cycle failed")
	ErrNotOpened       = errors.New("session has not rendered a document yet")
	ErrClosed          = errors.New("session is closed")
)
