// Package driver runs a transient simulation: it owns the clock, the
// nonlinear solver, and the time-step control loop, and calls the
// problem's lifecycle hooks around every macro step.
package driver

import (
	"context"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/porosim/porosim/internal/clock"
	"github.com/porosim/porosim/internal/newton"
	"github.com/porosim/porosim/internal/problem"
	"github.com/porosim/porosim/internal/timestep"
)

// Options configures a simulation run.
type Options struct {
	EndTime       float64
	InitialDt     float64
	MinDt         float64
	MaxDt         float64
	MaxDivisions  int
	EpisodeLength float64 // 0 disables episodes

	// Rank of this process; retry diagnostics come from rank 0 only.
	Rank int

	// Log receives retry diagnostics. Nil silences them.
	Log io.Writer

	// Checkpoints, when non-nil, receives a restart checkpoint whenever
	// the problem asks for one.
	Checkpoints CheckpointWriter

	Newton newton.Options
}

// CheckpointWriter persists restart state.
type CheckpointWriter interface {
	WriteCheckpoint(t float64, stepIdx int, u []float64) error
}

// Observer is notified after every accepted macro step.
type Observer interface {
	OnStep(t, dt float64, u []float64)
}

// Result collects the recorded trajectory of a run.
type Result struct {
	Times      []float64
	StepSizes  []float64
	Iterations []int
	Solutions  [][]float64
	Steps      int
	Retries    int
	Totals     timestep.TimingTotals
}

// Simulation wires a problem to the time-stepping machinery.
type Simulation struct {
	prob      problem.Problem
	clk       *clock.Clock
	ctrl      *timestep.Controller
	method    *newton.Method
	loop      *timestep.Loop
	totals    timestep.TimingTotals
	opts      Options
	observers []Observer

	wall time.Duration
}

func New(prob problem.Problem, opts Options) (*Simulation, error) {
	if opts.InitialDt <= 0 {
		opts.InitialDt = opts.MinDt
	}
	if opts.MaxDivisions < 0 {
		return nil, fmt.Errorf("max step divisions must not be negative, got %d", opts.MaxDivisions)
	}

	clk, err := clock.New(opts.EndTime, opts.InitialDt)
	if err != nil {
		return nil, err
	}
	if opts.EpisodeLength > 0 {
		clk.SetEpisodeLength(opts.EpisodeLength)
	}

	ctrl, err := timestep.NewController(opts.InitialDt, opts.MinDt, opts.MaxDt)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		prob:   prob,
		clk:    clk,
		ctrl:   ctrl,
		method: newton.New(prob, prob.InitialSolution(), opts.Newton),
		opts:   opts,
	}
	s.loop = timestep.NewLoop(ctrl, s.method, clk, &s.totals, timestep.LoopConfig{
		MaxDivisions: opts.MaxDivisions,
		Rank:         opts.Rank,
		Log:          opts.Log,
	})
	return s, nil
}

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Clock exposes the simulation clock, e.g. for live views.
func (s *Simulation) Clock() *clock.Clock { return s.clk }

// Run advances the simulation until the end time. A macro step that
// cannot be completed aborts the whole run: the error wraps
// *timestep.ExhaustedError and the partial result is still returned.
func (s *Simulation) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	defer func() { s.wall = time.Since(started) }()

	// The initial snapshot carries the step size about to be attempted,
	// so plots of the step-size series do not start with a zero dip.
	result := &Result{}
	s.record(result, s.method.Solution(), s.ctrl.Current())

	s.prob.BeginEpisode(s.clk.EpisodeIndex())

	for !s.clk.Finished() {
		s.prob.BeginTimeStep(s.clk.Time())

		// The clock truncates the step onto episode boundaries and the
		// end of the run; the controller attempts exactly that size.
		dt := s.clk.StepSize()
		s.ctrl.Set(dt)
		s.clk.SetStepSize(dt)

		if err := s.loop.Advance(ctx); err != nil {
			result.Totals = s.totals
			return result, fmt.Errorf("simulation aborted at t=%g: %w", s.clk.Time(), err)
		}

		dtUsed := s.ctrl.Current()
		s.method.AdvanceTimeLevel()
		s.clk.Advance()
		s.prob.EndTimeStep(s.clk.Time())

		result.Steps++
		if s.prob.ShouldWriteOutput(s.clk.StepIndex()) {
			s.record(result, s.method.Solution(), dtUsed)
		}
		for _, o := range s.observers {
			o.OnStep(s.clk.Time(), dtUsed, s.method.Solution())
		}
		if s.opts.Checkpoints != nil && s.prob.ShouldWriteRestart(s.clk.StepIndex()) {
			if err := s.opts.Checkpoints.WriteCheckpoint(s.clk.Time(), s.clk.StepIndex(), s.method.Solution()); err != nil {
				result.Totals = s.totals
				return result, fmt.Errorf("writing checkpoint: %w", err)
			}
		}

		result.Retries = s.loop.Retries()

		if s.clk.EpisodeIsOver() && !s.clk.Finished() {
			s.prob.EndEpisode(s.clk.EpisodeIndex())
			s.clk.StartNextEpisode()
			s.prob.BeginEpisode(s.clk.EpisodeIndex())
		}

		// Grow (or shrink) the next step from the solver's suggestion,
		// clamped to the configured maximum.
		next := math.Min(s.ctrl.Max(), s.method.SuggestStepSize(dtUsed))
		s.ctrl.Set(next)
		s.clk.SetStepSize(next)
	}

	result.Totals = s.totals
	return result, nil
}

func (s *Simulation) record(result *Result, u []float64, dt float64) {
	result.Times = append(result.Times, s.clk.Time())
	result.StepSizes = append(result.StepSizes, dt)
	result.Iterations = append(result.Iterations, s.method.LastIterations())
	result.Solutions = append(result.Solutions, append([]float64(nil), u...))
}

// Summary writes the cumulative timing breakdown of the run.
func (s *Simulation) Summary(w io.Writer) {
	total := s.totals.Total()
	pct := func(d time.Duration) string {
		if total == 0 {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", 100*float64(d)/float64(total))
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "simulation %q finished after %d steps\n", s.prob.Name(), s.clk.StepIndex())
	fmt.Fprintf(tw, "  wall clock time:\t%v\n", s.wall.Round(time.Millisecond))
	fmt.Fprintf(tw, "  linearization time:\t%v\t%s\n", s.totals.Assemble.Round(time.Microsecond), pct(s.totals.Assemble))
	fmt.Fprintf(tw, "  linear solve time:\t%v\t%s\n", s.totals.Solve.Round(time.Microsecond), pct(s.totals.Solve))
	fmt.Fprintf(tw, "  update time:\t%v\t%s\n", s.totals.Update.Round(time.Microsecond), pct(s.totals.Update))
	tw.Flush()
}
