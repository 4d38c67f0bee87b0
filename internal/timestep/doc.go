// Package timestep implements the adaptive time-step control loop that
// drives a nonlinear solver to convergence for each macro time step.
//
// The loop asks a [Controller] for the step size to attempt, invokes a
// [NonlinearSolver], and on failure halves the step size and retries:
//
//	ctrl, _ := timestep.NewController(dt0, minDt, maxDt)
//	loop := timestep.NewLoop(ctrl, solver, clock, totals, timestep.LoopConfig{MaxDivisions: 10})
//	if err := loop.Advance(ctx); err != nil {
//	    // *ExhaustedError: the macro step cannot be completed
//	}
//
// Halving gives a monotone, deterministic search, so the number of
// attempts before giving up is bounded by O(log2(dt0/minDt)) regardless
// of how badly the solver behaves. A failed macro step is fatal for the
// run: the loop never accepts a non-converged state.
package timestep
