// Package newton implements a Newton-Raphson nonlinear solver for
// implicit time stepping. It satisfies the timestep.NonlinearSolver
// contract: one Attempt per step size, with per-phase timing, and a
// step-size suggestion derived from how many iterations the last
// converged solve needed.
package newton

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/porosim/porosim/internal/problem"
	"github.com/porosim/porosim/internal/timestep"
)

const (
	DefaultMaxIterations    = 18
	DefaultTargetIterations = 10
	DefaultTolerance        = 1e-8
)

// Options tunes the iteration. Zero values fall back to the defaults.
type Options struct {
	// MaxIterations aborts the attempt when the iteration does not
	// converge in time.
	MaxIterations int

	// TargetIterations steers the step-size suggestion: fewer
	// iterations than the target grow the next step, more shrink it.
	TargetIterations int

	// Tolerance bounds the maximum relative solution update accepted
	// as converged.
	Tolerance float64
}

func (o *Options) setDefaults() {
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.TargetIterations <= 0 {
		o.TargetIterations = DefaultTargetIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
}

// Method is a dense Newton solver over a problem.System. The Jacobian
// is approximated by forward differences and the linear system solved
// by LU factorization.
//
// The solver keeps two time levels: the accepted solution of the last
// time level and the candidate produced by the latest converged
// attempt. Failed attempts never touch either, so the control loop can
// retry at a smaller step size from unchanged state.
type Method struct {
	sys  problem.System
	opts Options

	uPrev []float64 // accepted solution at the last time level
	u     []float64 // candidate from the latest converged attempt

	lastIterations int
}

func New(sys problem.System, u0 []float64, opts Options) *Method {
	opts.setDefaults()
	m := &Method{
		sys:   sys,
		opts:  opts,
		uPrev: append([]float64(nil), u0...),
		u:     append([]float64(nil), u0...),
	}
	return m
}

// Solution returns the candidate solution of the latest converged
// attempt. Valid after Attempt reported convergence.
func (m *Method) Solution() []float64 { return m.u }

// LastIterations reports the iteration count of the latest converged
// attempt.
func (m *Method) LastIterations() int { return m.lastIterations }

// AdvanceTimeLevel commits the candidate solution as the new accepted
// time level. The driver calls it once per accepted macro step.
func (m *Method) AdvanceTimeLevel() {
	copy(m.uPrev, m.u)
}

// Attempt runs one full Newton solve at the given step size. A
// non-converged iteration, a singular Jacobian, and NaN contamination
// all yield Converged == false rather than an error: they are exactly
// the failures a smaller step size can fix.
func (m *Method) Attempt(ctx context.Context, stepSize float64) (timestep.AttemptResult, error) {
	n := m.sys.Dim()
	u := append([]float64(nil), m.uPrev...)
	r := make([]float64, n)
	rhs := mat.NewVecDense(n, nil)
	delta := mat.NewVecDense(n, nil)

	var res timestep.AttemptResult
	var lu mat.LU

	for iter := 0; iter < m.opts.MaxIterations; iter++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		start := time.Now()
		m.sys.Residual(r, u, m.uPrev, stepSize)
		if !allFinite(r) {
			res.AssembleTime += time.Since(start)
			return res, nil
		}
		jac := m.linearize(u, r, stepSize)
		res.AssembleTime += time.Since(start)

		start = time.Now()
		for i := 0; i < n; i++ {
			rhs.SetVec(i, -r[i])
		}
		lu.Factorize(jac)
		err := lu.SolveVecTo(delta, false, rhs)
		res.SolveTime += time.Since(start)
		if err != nil {
			// singular or ill-conditioned Jacobian
			return res, nil
		}

		start = time.Now()
		shift := 0.0
		for i := 0; i < n; i++ {
			d := delta.AtVec(i)
			u[i] += d
			rel := math.Abs(d) / (math.Abs(u[i]) + 1)
			if rel > shift {
				shift = rel
			}
		}
		res.UpdateTime += time.Since(start)

		if math.IsNaN(shift) || math.IsInf(shift, 0) {
			return res, nil
		}
		if shift < m.opts.Tolerance {
			copy(m.u, u)
			m.lastIterations = iter + 1
			res.Converged = true
			return res, nil
		}
	}
	return res, nil
}

// SuggestStepSize proposes the next macro step size from the iteration
// count of the last converged solve: aggressive when shrinking,
// conservative when growing, to avoid provoking the failure path on
// the very next step.
func (m *Method) SuggestStepSize(last float64) float64 {
	n, target := m.lastIterations, m.opts.TargetIterations
	if n > target {
		percent := float64(n-target) / float64(target)
		return last / (1.0 + percent)
	}
	percent := float64(target-n) / float64(target)
	return last * (1.0 + percent/1.2)
}

// linearize builds the forward-difference Jacobian around u, reusing
// the already evaluated residual r0.
func (m *Method) linearize(u, r0 []float64, dt float64) *mat.Dense {
	n := m.sys.Dim()
	jac := mat.NewDense(n, n, nil)
	r := make([]float64, n)

	for j := 0; j < n; j++ {
		eps := 1e-8 * (1 + math.Abs(u[j]))
		saved := u[j]
		u[j] = saved + eps
		m.sys.Residual(r, u, m.uPrev, dt)
		u[j] = saved
		for i := 0; i < n; i++ {
			jac.Set(i, j, (r[i]-r0[i])/eps)
		}
	}
	return jac
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
