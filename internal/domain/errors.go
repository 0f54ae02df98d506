package domain

import "errors"

var (
	// ErrNotFound indicates an operation referenced an id absent from state.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed input such as an empty title.
	ErrValidation = errors.New("validation failed")

	// ErrBlockingConflict indicates a step overlaps another scheduled step.
	ErrBlockingConflict = errors.New("blocking schedule conflict")

	// ErrOutOfBounds indicates a schedule extends past its container.
	ErrOutOfBounds = errors.New("schedule out of bounds")
)
