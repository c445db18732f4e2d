package trace

import (
	"errors"
	"fmt"
)

// Domain errors for ray integration and assembly.
var (
	// ErrSingularDerivative indicates a NaN/Inf derivative evaluation,
	// typically momentum blow-up near a boundary singularity.
	ErrSingularDerivative = errors.New("trace: singular derivative (NaN or Inf)")

	// ErrStepTooSmall indicates the adaptive timestep fell below minimum.
	ErrStepTooSmall = errors.New("trace: adaptive timestep below minimum")

	// ErrNoConvergence indicates an implicit stepper iteration stalled.
	ErrNoConvergence = errors.New("trace: implicit stepper failed to converge")

	// ErrHorizonExceeded indicates the time span was exhausted before a
	// requested terminal condition was met.
	ErrHorizonExceeded = errors.New("trace: integration horizon exhausted")

	// ErrNoRays indicates a family finished with zero successful rays.
	ErrNoRays = errors.New("trace: ray family has no successful trajectories")

	// ErrModelMismatch indicates composite assembly across inconsistent
	// model specifications.
	ErrModelMismatch = errors.New("trace: model specification mismatch")
)

// IntegrationError wraps a stepper failure with the last valid state and
// the failure time; the caller decides whether the partial trajectory is
// usable.
type IntegrationError struct {
	Time    float64
	Step    int
	Last    State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
