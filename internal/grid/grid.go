// Package grid provides a structured 1D finite-volume grid.
//
// Quantities assume a three-dimensional world: the 1D column is
// extruded to a 1m x 1m cross section, so cell volumes and face areas
// carry their usual units.
package grid

import "fmt"

// Grid is a uniform 1D cell-centered finite-volume grid on [0, Length].
type Grid struct {
	nCells int
	length float64
	dx     float64
}

func New1D(length float64, nCells int) (*Grid, error) {
	if length <= 0 {
		return nil, fmt.Errorf("domain length must be positive, got %g", length)
	}
	if nCells < 1 {
		return nil, fmt.Errorf("need at least one cell, got %d", nCells)
	}
	return &Grid{nCells: nCells, length: length, dx: length / float64(nCells)}, nil
}

func (g *Grid) NumCells() int   { return g.nCells }
func (g *Grid) Length() float64 { return g.length }
func (g *Grid) Dx() float64     { return g.dx }

func (g *Grid) CellCenter(i int) float64 {
	return (float64(i) + 0.5) * g.dx
}

// CellVolume is dx times the unit cross section.
func (g *Grid) CellVolume(i int) float64 { return g.dx }

// NumInteriorFaces returns the number of faces between cell pairs.
// Interior face f sits between cells f and f+1.
func (g *Grid) NumInteriorFaces() int { return g.nCells - 1 }

// Transmissibility computes the geometric part of the two-point flux
// across interior face f for per-cell permeabilities, using the
// harmonic average the finite-volume scheme requires.
func (g *Grid) Transmissibility(perm []float64, f int) float64 {
	kl, kr := perm[f], perm[f+1]
	if kl+kr == 0 {
		return 0
	}
	kHarm := 2 * kl * kr / (kl + kr)
	return kHarm / g.dx // unit face area
}

func (g *Grid) OnLeftBoundary(i int) bool  { return i == 0 }
func (g *Grid) OnRightBoundary(i int) bool { return i == g.nCells-1 }

// BoundingBox returns the axis-aligned bounds of the extruded domain.
func (g *Grid) BoundingBox() (min, max [3]float64) {
	return [3]float64{0, 0, 0}, [3]float64{g.length, 1, 1}
}
