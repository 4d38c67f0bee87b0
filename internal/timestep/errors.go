package timestep

import (
	"errors"
	"fmt"
)

// Sentinel errors for the two ways a macro step can run out of options.
var (
	// ErrStepSizeFloor indicates halving would push the step size below
	// the configured minimum.
	ErrStepSizeFloor = errors.New("timestep: step size below minimum")

	// ErrRetryBudget indicates the maximum number of step-size divisions
	// has been used without convergence.
	ErrRetryBudget = errors.New("timestep: retry budget exhausted")
)

// ExhaustedError reports that a macro time step could not be completed.
// It wraps either ErrStepSizeFloor or ErrRetryBudget and records how far
// the retry search got. Receiving it means the simulation must abort:
// continuing would silently carry a non-converged solution forward.
type ExhaustedError struct {
	Attempts int     // solver attempts made during the macro step
	StepSize float64 // last step size that was attempted
	Reason   error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("nonlinear solver did not converge after %d attempts (dt=%g): %v",
		e.Attempts, e.StepSize, e.Reason)
}

func (e *ExhaustedError) Unwrap() error { return e.Reason }
