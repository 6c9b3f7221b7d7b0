package interfaces

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is not allowed in the record's current state
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput is returned when caller supplied values cannot be used
	ErrInvalidInput = errors.New("invalid input")

	// ErrAIUnavailable is returned when no AI provider can serve a request
	ErrAIUnavailable = errors.New("ai provider unavailable")
)
