// Package export renders run results to image files.
package export

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SolutionProfile plots a solution field over the spatial coordinate.
func SolutionProfile(path string, xs, values []float64, title, yLabel string) error {
	if len(xs) != len(values) {
		return fmt.Errorf("mismatched lengths: %d coordinates, %d values", len(xs), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x [m]"
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = values[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// StepSizeHistory plots the step size the solver settled on over
// simulation time. Dips mark retries or episode boundaries.
func StepSizeHistory(path string, times, stepSizes []float64) error {
	if len(times) != len(stepSizes) {
		return fmt.Errorf("mismatched lengths: %d times, %d step sizes", len(times), len(stepSizes))
	}

	p := plot.New()
	p.Title.Text = "time step size"
	p.X.Label.Text = "t [s]"
	p.Y.Label.Text = "dt [s]"

	pts := make(plotter.XYs, len(times))
	for i := range times {
		pts[i].X = times[i]
		pts[i].Y = stepSizes[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
