// Package problem defines what a simulation problem supplies to the
// framework: the discretized nonlinear system, initial conditions, and
// lifecycle hooks.
//
// Problems provide data and callbacks; the framework owns all control
// flow. A concrete problem embeds [Base] and overrides what it needs:
//
//	type Column struct {
//	    problem.Base
//	    // ...
//	}
package problem

// System is the spatially discretized nonlinear system for one implicit
// time step: find u such that Residual(u, uOld, dt) == 0.
type System interface {
	// Dim is the number of degrees of freedom.
	Dim() int

	// Residual evaluates the time-discrete residual into r, given the
	// candidate solution u and the accepted solution uOld of the
	// previous time level. It must not mutate u or uOld.
	Residual(r, u, uOld []float64, dt float64)
}

// Problem couples a discrete system with initial data and the hooks the
// driver calls around each episode and time step.
type Problem interface {
	System

	Name() string

	// InitialSolution returns the primary variables at t=0.
	InitialSolution() []float64

	BeginEpisode(idx int)
	EndEpisode(idx int)
	BeginTimeStep(t float64)
	EndTimeStep(t float64)

	// ShouldWriteOutput decides whether the solution at the given step
	// index is recorded.
	ShouldWriteOutput(stepIdx int) bool

	// ShouldWriteRestart decides whether a restart checkpoint is
	// written after the given step index.
	ShouldWriteRestart(stepIdx int) bool
}

// Base provides the default hook behavior: no-op lifecycle callbacks,
// output every step, and a restart checkpoint every 10 steps.
type Base struct{}

func (Base) BeginEpisode(idx int)    {}
func (Base) EndEpisode(idx int)      {}
func (Base) BeginTimeStep(t float64) {}
func (Base) EndTimeStep(t float64)   {}

func (Base) ShouldWriteOutput(stepIdx int) bool { return true }

func (Base) ShouldWriteRestart(stepIdx int) bool {
	return stepIdx > 0 && stepIdx%10 == 0
}
