package models

import (
	"fmt"
	"sort"

	"github.com/porosim/porosim/internal/grid"
	"github.com/porosim/porosim/internal/problem"
)

var registry = map[string]func(g *grid.Grid) problem.Problem{
	"heat":           func(g *grid.Grid) problem.Problem { return NewHeat(g) },
	"powerinjection": func(g *grid.Grid) problem.Problem { return NewPowerInjection(g) },
}

// New builds the named problem on the given grid.
func New(name string, g *grid.Grid) (problem.Problem, error) {
	alloc, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown model %q (available: %v)", name, List())
	}
	return alloc(g), nil
}

// List returns the registered model names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
