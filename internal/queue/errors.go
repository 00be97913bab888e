package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references an unknown task id.
	ErrNotFound = errors.New("task not found")

	// ErrValidation is the category sentinel for malformed input; concrete
	// causes wrap it so callers can match with errors.Is.
	ErrValidation = errors.New("validation failed")
)

// ErrEmptyDescription is returned by Add when the description is blank.
var ErrEmptyDescription = fmt.Errorf("%w: task description must not be empty", ErrValidation)

func invalidStatus(s Status) error {
	return fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}
