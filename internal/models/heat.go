package models

import (
	"github.com/porosim/porosim/internal/grid"
	"github.com/porosim/porosim/internal/problem"
)

const (
	DefaultDiffusivity = 1e-6 // granite-like thermal diffusivity [m^2/s]
	DefaultInitialTemp = 283.15
	DefaultBoundary    = 303.15
	DefaultTempRamp    = 10.0
)

// Heat models transient heat conduction through a 1D rock column. The
// left face holds a Dirichlet temperature that is raised by TempRamp at
// every episode boundary; the right face is insulated.
//
// The equations are linear, so the nonlinear solver converges in a
// couple of iterations. That makes Heat the sanity check of choice for
// the time-stepping machinery.
type Heat struct {
	problem.Base

	Diffusivity  float64
	InitialTemp  float64
	BoundaryTemp float64
	TempRamp     float64

	g        *grid.Grid
	leftTemp float64
}

func NewHeat(g *grid.Grid) *Heat {
	return &Heat{
		Diffusivity:  DefaultDiffusivity,
		InitialTemp:  DefaultInitialTemp,
		BoundaryTemp: DefaultBoundary,
		TempRamp:     DefaultTempRamp,
		g:            g,
		leftTemp:     DefaultBoundary,
	}
}

func (h *Heat) Name() string { return "heat" }

func (h *Heat) Dim() int { return h.g.NumCells() }

func (h *Heat) InitialSolution() []float64 {
	u := make([]float64, h.g.NumCells())
	for i := range u {
		u[i] = h.InitialTemp
	}
	return u
}

// BeginEpisode raises the boundary temperature for the new episode.
func (h *Heat) BeginEpisode(idx int) {
	h.leftTemp = h.BoundaryTemp + float64(idx)*h.TempRamp
}

// LeftTemp returns the Dirichlet temperature currently imposed on the
// left face.
func (h *Heat) LeftTemp() float64 { return h.leftTemp }

func (h *Heat) Residual(r, u, uOld []float64, dt float64) {
	n := h.g.NumCells()
	dx := h.g.Dx()
	alpha := h.Diffusivity

	for i := 0; i < n; i++ {
		// conductive inflow across both faces, unit cross section
		inflow := 0.0
		if h.g.OnLeftBoundary(i) {
			inflow += 2 * alpha * (h.leftTemp - u[i]) / dx
		} else {
			inflow += alpha * (u[i-1] - u[i]) / dx
		}
		if !h.g.OnRightBoundary(i) {
			inflow += alpha * (u[i+1] - u[i]) / dx
		}
		r[i] = h.g.CellVolume(i)*(u[i]-uOld[i])/dt - inflow
	}
}
