package timestep

import (
	"context"
	"fmt"
	"io"
	"time"
)

// AttemptResult is the verdict of one nonlinear solve attempt together
// with the wall time spent in each solver phase. Results are produced
// fresh per attempt and never mutated afterwards.
type AttemptResult struct {
	Converged    bool
	AssembleTime time.Duration
	SolveTime    time.Duration
	UpdateTime   time.Duration
}

// TimingTotals accumulates solver phase times over a whole simulation.
// The driver owns it; the loop only ever adds to it. Failed attempts
// burn real compute and are accounted for like successful ones.
type TimingTotals struct {
	Assemble time.Duration
	Solve    time.Duration
	Update   time.Duration
}

func (t *TimingTotals) Add(r AttemptResult) {
	t.Assemble += r.AssembleTime
	t.Solve += r.SolveTime
	t.Update += r.UpdateTime
}

func (t *TimingTotals) Total() time.Duration {
	return t.Assemble + t.Solve + t.Update
}

// NonlinearSolver performs one full solve attempt for a given step size.
// The loop never looks past these two calls and the AttemptResult fields.
type NonlinearSolver interface {
	// Attempt runs one nonlinear solve at the given step size. A
	// non-converged attempt is not an error; the error return is for
	// hard failures (cancellation, singular systems) that no amount of
	// step shrinking can fix.
	Attempt(ctx context.Context, stepSize float64) (AttemptResult, error)

	// SuggestStepSize proposes a step size for the next macro step based
	// on how the last one went. Called by the driver after a converged
	// step, never by the loop itself.
	SuggestStepSize(last float64) float64
}

// Clock is the loop's view of the simulation clock: the externally
// imposed step size and whether the run or the current episode is about
// to end. The loop consults it but does not own it.
type Clock interface {
	StepSize() float64
	SetStepSize(v float64)
	WillBeFinished() bool
	EpisodeWillEnd() bool
}

// LoopConfig carries the retry policy and diagnostics routing.
type LoopConfig struct {
	// MaxDivisions bounds the number of halve-and-retry cycles per macro
	// step. Zero means a single attempt with no retries.
	MaxDivisions int

	// Rank identifies this process in a distributed run. Retry
	// diagnostics are emitted only from rank 0 so they appear once.
	Rank int

	// Log receives one line per retry. Nil silences diagnostics.
	Log io.Writer
}

// Loop advances the simulation by one macro time step, retrying the
// nonlinear solve with halved step sizes until it converges or the
// retry budget runs out.
type Loop struct {
	ctrl    *Controller
	solver  NonlinearSolver
	clock   Clock
	totals  *TimingTotals
	cfg     LoopConfig
	retries int
}

func NewLoop(ctrl *Controller, solver NonlinearSolver, clock Clock, totals *TimingTotals, cfg LoopConfig) *Loop {
	return &Loop{ctrl: ctrl, solver: solver, clock: clock, totals: totals, cfg: cfg}
}

// Retries reports the cumulative number of halve-and-retry cycles over
// all macro steps so far. Diagnostics only.
func (l *Loop) Retries() int { return l.retries }

// Advance attempts one macro time step. It returns nil once an attempt
// converges and a *ExhaustedError when the step cannot be completed
// within the configured budget. Individual failed attempts are never
// surfaced; their cost still lands in the timing totals.
func (l *Loop) Advance(ctx context.Context) error {
	// The driver's suggestion logic can leave the step size below the
	// floor. Unless the run or episode is ending (where a short step is
	// the point), bump it back up before attempting anything.
	if l.ctrl.Current() < l.ctrl.Min() &&
		!l.clock.EpisodeWillEnd() && !l.clock.WillBeFinished() {
		l.ctrl.Set(l.ctrl.Min())
		l.clock.SetStepSize(l.ctrl.Min())
	}

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		res, err := l.solver.Attempt(ctx, l.ctrl.Current())
		if err != nil {
			return err
		}
		attempts++
		l.totals.Add(res)

		if res.Converged {
			return nil
		}
		if attempts > l.cfg.MaxDivisions {
			return &ExhaustedError{Attempts: attempts, StepSize: l.ctrl.Current(), Reason: ErrRetryBudget}
		}

		dt := l.ctrl.Current()
		next, herr := l.ctrl.Halve()
		if herr != nil {
			return &ExhaustedError{Attempts: attempts, StepSize: dt, Reason: herr}
		}
		l.clock.SetStepSize(next)
		l.retries++

		if l.cfg.Rank == 0 && l.cfg.Log != nil {
			fmt.Fprintf(l.cfg.Log, "nonlinear solver did not converge with dt=%g, retrying with dt=%g\n", dt, next)
		}
	}
}
