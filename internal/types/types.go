// Package types defines the shared data structures and error taxonomy used
// across the nudging subsystem.
package types

import "fmt"

// GridShape records the dimensions fixed at initialization: the number of
// grid columns, the number of vertical levels on the model grid, and the
// number of vertical levels on the reference dataset's native grid. The
// source level count may differ from the model level count.
type GridShape struct {
	NumColumns      int
	NumModelLevels  int
	NumSourceLevels int
}

// Validate returns ErrConfig if any dimension is not positive.
func (g GridShape) Validate() error {
	if g.NumColumns <= 0 || g.NumModelLevels <= 0 || g.NumSourceLevels <= 0 {
		return fmt.Errorf("%w: grid shape %+v has a non-positive dimension", ErrConfig, g)
	}
	return nil
}

// Snapshot is one time-stamped sample of the reference dataset: the field
// values for every column on the dataset's native source levels, plus the
// source-level coordinates recorded with the sample. A Snapshot is immutable
// once loaded; the snapshot store replaces it rather than mutating it.
type Snapshot struct {
	Timestamp float64
	Levels    []float64   // source-level coordinates, length NumSourceLevels
	Values    [][]float64 // [NumColumns][NumSourceLevels]
}

// BracketingWindow holds the two snapshots whose timestamps straddle the
// current simulation time. The snapshot store maintains the invariant
// Lower.Timestamp <= t <= Upper.Timestamp for every time it is asked about.
type BracketingWindow struct {
	Lower *Snapshot
	Upper *Snapshot
}

// Brackets reports whether t falls inside the window.
func (w BracketingWindow) Brackets(t float64) bool {
	if w.Lower == nil || w.Upper == nil {
		return false
	}
	return w.Lower.Timestamp <= t && t <= w.Upper.Timestamp
}
