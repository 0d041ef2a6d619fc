// Package host provides the minimal surface of the host atmosphere
// framework consumed by the process subsystem: named grids with column and
// level counts, and a store of named mutable 2-D fields per grid. The real
// host owns the time loop and field storage; this package stands in for it
// in tools and tests.
package host

import (
	"fmt"

	"github.com/atmoscale/nudge/internal/types"
)

// Grid describes one horizontal/vertical grid and owns its field store.
type Grid struct {
	name      string
	numCols   int
	numLevels int
	levels    []float64 // model-level coordinates, length numLevels
	fields    map[string][][]float64
}

// NewGrid creates a grid with the given dimensions and model-level
// coordinates. len(levels) must equal numLevels.
func NewGrid(name string, numCols int, levels []float64) (*Grid, error) {
	if numCols <= 0 || len(levels) == 0 {
		return nil, fmt.Errorf("%w: grid %q needs positive column and level counts", types.ErrConfig, name)
	}
	return &Grid{
		name:      name,
		numCols:   numCols,
		numLevels: len(levels),
		levels:    levels,
		fields:    make(map[string][][]float64),
	}, nil
}

// Name returns the grid name.
func (g *Grid) Name() string { return g.name }

// NumColumns returns the number of grid columns.
func (g *Grid) NumColumns() int { return g.numCols }

// NumLevels returns the number of vertical model levels.
func (g *Grid) NumLevels() int { return g.numLevels }

// LevelCoords returns the model-level coordinate array. Callers must not
// modify it.
func (g *Grid) LevelCoords() []float64 { return g.levels }

// DefineField allocates a named columns-by-levels field initialized to zero.
// Defining an existing name is an error.
func (g *Grid) DefineField(name string) error {
	if _, ok := g.fields[name]; ok {
		return fmt.Errorf("%w: field %q already defined on grid %q", types.ErrConfig, name, g.name)
	}
	f := make([][]float64, g.numCols)
	for c := range f {
		f[c] = make([]float64, g.numLevels)
	}
	g.fields[name] = f
	return nil
}

// HasField reports whether a field of the given name exists on the grid.
func (g *Grid) HasField(name string) bool {
	_, ok := g.fields[name]
	return ok
}

// MutableField returns non-owning mutable access to the named field.
func (g *Grid) MutableField(name string) ([][]float64, error) {
	f, ok := g.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %q does not exist on grid %q", types.ErrConfig, name, g.name)
	}
	return f, nil
}

// GridsManager resolves grid names to grids, mirroring the manager the host
// framework hands to each process at set_grids time.
type GridsManager struct {
	grids map[string]*Grid
}

// NewGridsManager creates an empty manager.
func NewGridsManager() *GridsManager {
	return &GridsManager{grids: make(map[string]*Grid)}
}

// Add registers a grid under its name.
func (m *GridsManager) Add(g *Grid) {
	m.grids[g.Name()] = g
}

// Grid returns the named grid.
func (m *GridsManager) Grid(name string) (*Grid, error) {
	g, ok := m.grids[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown grid %q", types.ErrConfig, name)
	}
	return g, nil
}
