package models

import (
	"math"
	"testing"

	"github.com/porosim/porosim/internal/grid"
)

func injectionFixture(t *testing.T, cells int) *PowerInjection {
	t.Helper()
	g, err := grid.New1D(100, cells)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return NewPowerInjection(g)
}

func TestPowerInjectionEquilibrium(t *testing.T) {
	p := injectionFixture(t, 10)
	p.InjectionRate = 0

	u := p.InitialSolution()
	r := make([]float64, p.Dim())
	p.Residual(r, u, u, 1000)

	for i, ri := range r {
		if math.Abs(ri) > 1e-12 {
			t.Errorf("residual[%d] = %g at rest", i, ri)
		}
	}
}

func TestPowerInjectionSourceTerm(t *testing.T) {
	p := injectionFixture(t, 10)

	u := p.InitialSolution()
	r := make([]float64, p.Dim())
	p.Residual(r, u, u, 1000)

	// Frozen state: the only imbalance is the forced air inflow in the
	// first cell's air equation.
	if math.Abs(r[1]+p.InjectionRate) > 1e-15 {
		t.Errorf("air residual %g, want %g", r[1], -p.InjectionRate)
	}
	if r[0] != 0 {
		t.Errorf("water residual %g, want 0", r[0])
	}
	for i := 2; i < len(r); i++ {
		if r[i] != 0 {
			t.Errorf("residual[%d] = %g, want 0", i, r[i])
		}
	}
}

func TestPowerInjectionUpwinding(t *testing.T) {
	p := injectionFixture(t, 2)

	// Air sits in the left cell under elevated pressure; the flux into
	// the right cell must carry the left (upwind) cell's mobility.
	u := p.InitialSolution()
	u[0] = 2e5 // left pressure
	u[1] = 0.5 // left air saturation
	r := make([]float64, p.Dim())
	p.Residual(r, u, u, 1e9) // huge dt: storage terms negligible

	if r[3] >= 0 {
		t.Errorf("right cell gains no air: residual %g", r[3])
	}
	if math.Abs(r[1]+p.InjectionRate+r[3]) > math.Abs(r[3])*1e-9 {
		t.Errorf("air leaving left (%g) does not match air entering right (%g)", r[1], r[3])
	}
}

func TestPowerInjectionInitialState(t *testing.T) {
	p := injectionFixture(t, 5)

	u := p.InitialSolution()
	if len(u) != 10 {
		t.Fatalf("dim %d, want 10", len(u))
	}
	for i := 0; i < 5; i++ {
		if u[2*i] != DefaultOutletPressure {
			t.Errorf("cell %d pressure %g", i, u[2*i])
		}
		if u[2*i+1] != 0 {
			t.Errorf("cell %d air saturation %g", i, u[2*i+1])
		}
	}
}
