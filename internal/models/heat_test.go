package models

import (
	"math"
	"testing"

	"github.com/porosim/porosim/internal/grid"
)

func heatFixture(t *testing.T, cells int) *Heat {
	t.Helper()
	g, err := grid.New1D(1.0, cells)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return NewHeat(g)
}

func TestHeatEquilibrium(t *testing.T) {
	h := heatFixture(t, 10)

	// Column already at boundary temperature: nothing moves.
	u := make([]float64, h.Dim())
	for i := range u {
		u[i] = h.BoundaryTemp
	}
	r := make([]float64, h.Dim())
	h.Residual(r, u, u, 100)

	for i, ri := range r {
		if math.Abs(ri) > 1e-12 {
			t.Errorf("residual[%d] = %g at equilibrium", i, ri)
		}
	}
}

func TestHeatBoundaryDrivesFirstCell(t *testing.T) {
	h := heatFixture(t, 10)

	u := h.InitialSolution()
	r := make([]float64, h.Dim())
	h.Residual(r, u, u, 100)

	// With u frozen at the old time level, the hot boundary shows up as
	// a negative residual in the first cell only.
	if r[0] >= 0 {
		t.Errorf("first cell residual %g, want negative (inflow)", r[0])
	}
	for i := 1; i < len(r); i++ {
		if r[i] != 0 {
			t.Errorf("interior cell %d residual %g, want 0", i, r[i])
		}
	}
}

func TestHeatEpisodeRamp(t *testing.T) {
	h := heatFixture(t, 4)

	if h.LeftTemp() != DefaultBoundary {
		t.Errorf("initial boundary temp %g", h.LeftTemp())
	}
	h.BeginEpisode(2)
	if want := DefaultBoundary + 2*DefaultTempRamp; h.LeftTemp() != want {
		t.Errorf("episode 2 boundary temp %g, want %g", h.LeftTemp(), want)
	}
}

func TestHeatInitialSolution(t *testing.T) {
	h := heatFixture(t, 7)

	u := h.InitialSolution()
	if len(u) != 7 {
		t.Fatalf("dim %d, want 7", len(u))
	}
	for i, ui := range u {
		if ui != DefaultInitialTemp {
			t.Errorf("initial temp[%d] = %g", i, ui)
		}
	}
}
