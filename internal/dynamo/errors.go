package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for model construction and analysis runs.
var (
	// ErrInvalidParameter indicates a non-positive damping or timestep.
	ErrInvalidParameter = errors.New("dynamo: parameter must be strictly positive")

	// ErrInvalidSeed indicates an initial condition that is not exactly
	// three finite reals.
	ErrInvalidSeed = errors.New("dynamo: seed must be 3 finite values")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// RunError wraps an error with the step at which it occurred.
type RunError struct {
	Step    int
	Wrapped error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
