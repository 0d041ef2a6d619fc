package nudging

import (
	"fmt"

	"github.com/atmoscale/nudge/internal/log"
	"github.com/atmoscale/nudge/internal/observability"
	"github.com/atmoscale/nudge/internal/types"
	"github.com/atmoscale/nudge/pkg/dataset"
)

// SnapshotStore owns the two in-memory reference snapshots bracketing the
// simulation clock. It reads from the dataset only when the clock crosses
// the upper timestamp, one entry per advance, and never holds more than two
// snapshots at a time.
type SnapshotStore struct {
	ds      *dataset.Handle
	shape   types.GridShape
	window  types.BracketingWindow
	nextIdx int // dataset index of the entry after window.Upper
	metrics *observability.Metrics
}

// NewSnapshotStore seeds the bracketing window from the first two dataset
// entries. A dataset with fewer than two entries cannot bracket any time and
// is rejected with ErrDataFormat.
func NewSnapshotStore(ds *dataset.Handle, shape types.GridShape, metrics *observability.Metrics) (*SnapshotStore, error) {
	if ds.EntryCount() < 2 {
		return nil, fmt.Errorf("%w: %s has %d entries, need at least two to bracket a time",
			types.ErrDataFormat, ds.Path(), ds.EntryCount())
	}

	s := &SnapshotStore{ds: ds, shape: shape, metrics: metrics}
	lower, err := s.load(0)
	if err != nil {
		return nil, err
	}
	upper, err := s.load(1)
	if err != nil {
		return nil, err
	}
	s.window = types.BracketingWindow{Lower: lower, Upper: upper}
	s.nextIdx = 2
	return s, nil
}

// EnsureWindow guarantees the returned window brackets t, advancing through
// the dataset as needed. Each advance discards the obsolete lower snapshot
// and reads exactly one new entry; in the steady state, where dt is smaller
// than the dataset spacing, that is at most one read per call. A time before
// the window start or past the last entry is ErrDataExhausted: the store
// never rewinds, and the dataset is expected to cover the whole run.
func (s *SnapshotStore) EnsureWindow(t float64) (types.BracketingWindow, error) {
	if t < s.window.Lower.Timestamp {
		return types.BracketingWindow{}, fmt.Errorf("%w: t=%g precedes the current window start %g in %s",
			types.ErrDataExhausted, t, s.window.Lower.Timestamp, s.ds.Path())
	}

	for t > s.window.Upper.Timestamp {
		if s.nextIdx >= s.ds.EntryCount() {
			return types.BracketingWindow{}, fmt.Errorf("%w: t=%g exceeds the last timestamp %g in %s",
				types.ErrDataExhausted, t, s.window.Upper.Timestamp, s.ds.Path())
		}
		next, err := s.load(s.nextIdx)
		if err != nil {
			return types.BracketingWindow{}, err
		}
		s.window = types.BracketingWindow{Lower: s.window.Upper, Upper: next}
		s.nextIdx++
		if s.metrics != nil {
			s.metrics.WindowAdvances.Inc()
		}
		log.Debugw("advanced bracketing window",
			"lower", s.window.Lower.Timestamp, "upper", s.window.Upper.Timestamp)
	}
	return s.window, nil
}

// Window returns the currently held window without advancing.
func (s *SnapshotStore) Window() types.BracketingWindow {
	return s.window
}

// Release drops both held snapshots.
func (s *SnapshotStore) Release() {
	s.window = types.BracketingWindow{}
}

// load reads entry i and validates it against the grid shape recorded at
// initialization.
func (s *SnapshotStore) load(i int) (*types.Snapshot, error) {
	e, err := s.ds.ReadEntry(i)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DatasetReads.Inc()
	}

	if len(e.Values) != s.shape.NumColumns {
		return nil, fmt.Errorf("%w: entry %d in %s has %d columns, grid has %d",
			types.ErrDataFormat, i, s.ds.Path(), len(e.Values), s.shape.NumColumns)
	}
	if len(e.Levels) != s.shape.NumSourceLevels {
		return nil, fmt.Errorf("%w: entry %d in %s has %d source levels, expected %d",
			types.ErrDataFormat, i, s.ds.Path(), len(e.Levels), s.shape.NumSourceLevels)
	}
	if !strictlyMonotonic(e.Levels) {
		return nil, fmt.Errorf("%w: entry %d in %s has non-monotonic level coordinates",
			types.ErrDataFormat, i, s.ds.Path())
	}

	return &types.Snapshot{Timestamp: e.Timestamp, Levels: e.Levels, Values: e.Values}, nil
}

// strictlyMonotonic reports whether levels are strictly increasing or
// strictly decreasing throughout.
func strictlyMonotonic(levels []float64) bool {
	if len(levels) < 2 {
		return true
	}
	increasing := levels[1] > levels[0]
	for i := 1; i < len(levels); i++ {
		if increasing && levels[i] <= levels[i-1] {
			return false
		}
		if !increasing && levels[i] >= levels[i-1] {
			return false
		}
	}
	return true
}
