package similarity

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by SetInputs when either side is blank.
	ErrEmptyInput = errors.New("candidate and requirement inputs must be non-empty")
	// ErrModelsUnavailable is returned when a matcher has no embedders.
	ErrModelsUnavailable = errors.New("embedding models are not available")
	// ErrInputsNotSet is returned when scoring is requested before SetInputs.
	ErrInputsNotSet = errors.New("inputs are not set")
)

// ComputeError wraps any failure raised while embedding or comparing items.
type ComputeError struct {
	Category Category
	Err      error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("compute %s similarity: %v", e.Category, e.Err)
}

func (e *ComputeError) Unwrap() error {
	return e.Err
}
