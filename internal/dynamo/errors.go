package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a particle constructed with non-positive mass.
	ErrInvalidMass = errors.New("dynamo: particle mass must be positive")

	// ErrInvalidState indicates a particle state containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrTimeReversal indicates a trajectory sample older than the last one.
	ErrTimeReversal = errors.New("dynamo: trajectory time must be non-decreasing")

	// ErrTrajectoryMismatch indicates trajectory logs not recorded in lock-step.
	ErrTrajectoryMismatch = errors.New("dynamo: trajectory lengths differ across ensemble")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
