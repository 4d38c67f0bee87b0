package timestep

import "fmt"

// Controller holds the step size to attempt next and applies the shrink
// policy. Halving is the only way the controller reduces the step size
// within a macro step; growing it again between macro steps is the
// driver's job (see NonlinearSolver.SuggestStepSize).
type Controller struct {
	current float64
	min     float64
	max     float64
}

func NewController(initial, min, max float64) (*Controller, error) {
	if min <= 0 {
		return nil, fmt.Errorf("minimum step size must be positive, got %g", min)
	}
	if max < min {
		return nil, fmt.Errorf("maximum step size %g smaller than minimum %g", max, min)
	}
	if initial <= 0 {
		return nil, fmt.Errorf("initial step size must be positive, got %g", initial)
	}
	return &Controller{current: initial, min: min, max: max}, nil
}

func (c *Controller) Current() float64 { return c.current }
func (c *Controller) Min() float64     { return c.min }
func (c *Controller) Max() float64     { return c.max }

// Set imposes an explicit step size. Used by the driver between macro
// steps and by the loop's corrective bump; no floor check is applied
// because the caller decides when going below the minimum is legitimate
// (e.g. the final, truncated step of the run).
func (c *Controller) Set(v float64) { c.current = v }

// Halve divides the current step size by two. If the result would fall
// below the minimum it returns ErrStepSizeFloor and leaves the current
// value untouched, so repeated calls at the floor are safe.
func (c *Controller) Halve() (float64, error) {
	next := c.current / 2
	if next < c.min {
		return c.current, ErrStepSizeFloor
	}
	c.current = next
	return next, nil
}
