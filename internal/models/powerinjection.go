package models

import (
	"github.com/porosim/porosim/internal/grid"
	"github.com/porosim/porosim/internal/problem"
)

const (
	DefaultPermeability   = 5.73e-8 // coarse unconsolidated sand [m^2]
	DefaultPorosity       = 0.558
	DefaultWaterViscosity = 1e-3   // [Pa s]
	DefaultAirViscosity   = 1.8e-5 // [Pa s]
	DefaultOutletPressure = 1e5    // [Pa]
	DefaultInjectionRate  = 1e-3   // air injected at the left face [m^3/(m^2 s)]
)

// PowerInjection models air injected at high rate into a 1D porous
// column that is initially fully water saturated. Air enters through a
// forced-flow condition at the left face; the right face is open at
// reservoir conditions (p=1e5 Pa, water saturated).
//
// Primary variables per cell are the pressure p and the air saturation
// Sn, interleaved as u[2i], u[2i+1]. Both phases are incompressible and
// relative permeabilities are quadratic in saturation; fluxes are
// upwinded in the usual first-order finite-volume way.
type PowerInjection struct {
	problem.Base

	Permeability   float64
	Porosity       float64
	WaterViscosity float64
	AirViscosity   float64
	OutletPressure float64
	InjectionRate  float64

	g *grid.Grid
}

func NewPowerInjection(g *grid.Grid) *PowerInjection {
	return &PowerInjection{
		Permeability:   DefaultPermeability,
		Porosity:       DefaultPorosity,
		WaterViscosity: DefaultWaterViscosity,
		AirViscosity:   DefaultAirViscosity,
		OutletPressure: DefaultOutletPressure,
		InjectionRate:  DefaultInjectionRate,
		g:              g,
	}
}

func (p *PowerInjection) Name() string { return "powerinjection" }

func (p *PowerInjection) Dim() int { return 2 * p.g.NumCells() }

// InitialSolution: water saturated at outlet pressure everywhere.
func (p *PowerInjection) InitialSolution() []float64 {
	u := make([]float64, p.Dim())
	for i := 0; i < p.g.NumCells(); i++ {
		u[2*i] = p.OutletPressure
		u[2*i+1] = 0
	}
	return u
}

// mobilities of the water and air phase for an air saturation sn
func (p *PowerInjection) mobilities(sn float64) (lw, ln float64) {
	sw := 1 - sn
	return sw * sw / p.WaterViscosity, sn * sn / p.AirViscosity
}

func (p *PowerInjection) Residual(r, u, uOld []float64, dt float64) {
	n := p.g.NumCells()
	for i := range r {
		r[i] = 0
	}

	// storage
	for i := 0; i < n; i++ {
		sn, snOld := u[2*i+1], uOld[2*i+1]
		vol := p.g.CellVolume(i) * p.Porosity
		r[2*i] += vol * ((1 - sn) - (1 - snOld)) / dt // water
		r[2*i+1] += vol * (sn - snOld) / dt           // air
	}

	// interior fluxes, phase-wise upwinding
	perm := p.Permeability
	for f := 0; f < p.g.NumInteriorFaces(); f++ {
		i, j := f, f+1
		trans := perm / p.g.Dx() // uniform permeability, unit area
		dp := u[2*i] - u[2*j]

		up := i
		if dp < 0 {
			up = j
		}
		lw, ln := p.mobilities(u[2*up+1])

		fw := trans * lw * dp // water volume flux i -> j
		fn := trans * ln * dp
		r[2*i] += fw
		r[2*i+1] += fn
		r[2*j] -= fw
		r[2*j+1] -= fn
	}

	// left face: forced air inflow
	r[1] -= p.InjectionRate

	// right face: open boundary at reservoir conditions, half-cell
	// distance to the Dirichlet pressure
	last := n - 1
	trans := 2 * perm / p.g.Dx()
	dp := u[2*last] - p.OutletPressure
	var lw, ln float64
	if dp >= 0 {
		lw, ln = p.mobilities(u[2*last+1])
	} else {
		lw, ln = p.mobilities(0) // reservoir water flows back in
	}
	r[2*last] += trans * lw * dp
	r[2*last+1] += trans * ln * dp
}
