package driver

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/porosim/porosim/internal/grid"
	"github.com/porosim/porosim/internal/models"
	"github.com/porosim/porosim/internal/problem"
	"github.com/porosim/porosim/internal/timestep"
)

func heatSimulation(t *testing.T, opts Options) *Simulation {
	t.Helper()
	g, err := grid.New1D(1.0, 5)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	s, err := New(models.NewHeat(g), opts)
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}
	return s
}

func TestRunHeatToCompletion(t *testing.T) {
	s := heatSimulation(t, Options{
		EndTime:      1000,
		InitialDt:    10,
		MinDt:        1,
		MaxDt:        200,
		MaxDivisions: 5,
	})

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Steps == 0 {
		t.Fatal("no steps taken")
	}
	last := result.Times[len(result.Times)-1]
	if math.Abs(last-1000) > 1e-9 {
		t.Errorf("ended at t=%g, want 1000", last)
	}
	for i := 1; i < len(result.Times); i++ {
		if result.Times[i] <= result.Times[i-1] {
			t.Errorf("times not strictly increasing at %d: %g after %g", i, result.Times[i], result.Times[i-1])
		}
	}
	if result.StepSizes[0] != 10 {
		t.Errorf("initial snapshot step size %g, want the initial 10", result.StepSizes[0])
	}
	for i, dt := range result.StepSizes {
		if dt <= 0 {
			t.Errorf("step size %g at %d, want positive", dt, i)
		}
		if dt > 200 {
			t.Errorf("step size %g exceeds maximum", dt)
		}
	}

	// The linear heat problem converges every step; the column warms
	// toward the boundary temperature.
	final := result.Solutions[len(result.Solutions)-1]
	if final[0] <= models.DefaultInitialTemp {
		t.Errorf("first cell never warmed: %g", final[0])
	}
	if result.Retries != 0 {
		t.Errorf("unexpected retries: %d", result.Retries)
	}
	if result.Totals.Total() == 0 {
		t.Error("timing totals empty")
	}
}

func TestRunEpisodesFireHooks(t *testing.T) {
	g, err := grid.New1D(1.0, 4)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	h := models.NewHeat(g)
	s, err := New(h, Options{
		EndTime:       100,
		InitialDt:     5,
		MinDt:         0.1,
		MaxDt:         20,
		MaxDivisions:  5,
		EpisodeLength: 25,
	})
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	// 4 episodes of 25s: the last BeginEpisode raised the boundary
	// temperature three times.
	want := models.DefaultBoundary + 3*models.DefaultTempRamp
	if h.LeftTemp() != want {
		t.Errorf("boundary temp %g after run, want %g", h.LeftTemp(), want)
	}
}

// stuckProblem has a constant nonzero residual: no step size helps.
type stuckProblem struct {
	problem.Base
}

func (stuckProblem) Name() string { return "stuck" }
func (stuckProblem) Dim() int     { return 1 }

func (stuckProblem) InitialSolution() []float64 { return []float64{0} }

func (stuckProblem) Residual(r, u, uOld []float64, dt float64) {
	r[0] = 1
}

func TestRunAbortsWhenExhausted(t *testing.T) {
	log := &bytes.Buffer{}
	s, err := New(stuckProblem{}, Options{
		EndTime:      100,
		InitialDt:    8,
		MinDt:        1,
		MaxDt:        10,
		MaxDivisions: 3,
		Log:          log,
	})
	if err != nil {
		t.Fatalf("new simulation: %v", err)
	}

	result, runErr := s.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected a fatal abort")
	}

	var ex *timestep.ExhaustedError
	if !errors.As(runErr, &ex) {
		t.Fatalf("error %v does not wrap ExhaustedError", runErr)
	}
	if ex.Attempts != 4 {
		t.Errorf("aborted after %d attempts, want 4", ex.Attempts)
	}
	if result == nil {
		t.Fatal("partial result not returned")
	}
	if result.Totals.Total() == 0 {
		t.Error("failed attempts not accounted in totals")
	}
	if log.Len() == 0 {
		t.Error("no retry diagnostics emitted")
	}
}

type countingObserver struct{ steps int }

func (c *countingObserver) OnStep(t, dt float64, u []float64) { c.steps++ }

func TestRunNotifiesObservers(t *testing.T) {
	s := heatSimulation(t, Options{
		EndTime:      100,
		InitialDt:    10,
		MinDt:        1,
		MaxDt:        50,
		MaxDivisions: 5,
	})
	obs := &countingObserver{}
	s.AddObserver(obs)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if obs.steps != result.Steps {
		t.Errorf("observer saw %d steps, run took %d", obs.steps, result.Steps)
	}
}

type memCheckpoints struct{ writes int }

func (m *memCheckpoints) WriteCheckpoint(t float64, stepIdx int, u []float64) error {
	m.writes++
	return nil
}

func TestRunWritesCheckpoints(t *testing.T) {
	cp := &memCheckpoints{}
	s := heatSimulation(t, Options{
		EndTime:      100,
		InitialDt:    2,
		MinDt:        1,
		MaxDt:        2, // force many small steps so step 10, 20, ... occur
		MaxDivisions: 5,
		Checkpoints:  cp,
	})

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 50 steps of dt=2: checkpoints at steps 10..50.
	if cp.writes != 5 {
		t.Errorf("wrote %d checkpoints, want 5", cp.writes)
	}
}

func TestRunCanceled(t *testing.T) {
	s := heatSimulation(t, Options{
		EndTime:      1e6,
		InitialDt:    1,
		MinDt:        1,
		MaxDt:        1,
		MaxDivisions: 5,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}
