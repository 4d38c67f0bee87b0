package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/porosim/porosim/internal/grid"
	"github.com/porosim/porosim/internal/models"
)

func TestEnsembleRun(t *testing.T) {
	factory := func(idx int) (*Simulation, error) {
		g, err := grid.New1D(1.0, 4)
		if err != nil {
			return nil, err
		}
		h := models.NewHeat(g)
		// vary the boundary temperature per member
		h.BoundaryTemp = models.DefaultBoundary + float64(idx)*5
		return New(h, Options{
			EndTime:      100,
			InitialDt:    10,
			MinDt:        1,
			MaxDt:        50,
			MaxDivisions: 5,
		})
	}

	ens := NewEnsemble(factory, 4)
	results, err := ens.Run(context.Background())
	if err != nil {
		t.Fatalf("ensemble run: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results", len(results))
	}

	// Hotter boundaries warm the column further.
	for i := 1; i < len(results); i++ {
		prev := results[i-1].Solutions[len(results[i-1].Solutions)-1][0]
		cur := results[i].Solutions[len(results[i].Solutions)-1][0]
		if cur <= prev {
			t.Errorf("member %d not warmer than member %d: %g vs %g", i, i-1, cur, prev)
		}
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	boom := errors.New("bad member")
	ens := NewEnsemble(func(idx int) (*Simulation, error) {
		return nil, boom
	}, 2)

	if _, err := ens.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v, want factory error", err)
	}
}
