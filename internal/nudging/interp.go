package nudging

import (
	"gonum.org/v1/gonum/floats"

	"github.com/atmoscale/nudge/internal/types"
)

// InterpolateInTime fills dst with the reference values linearly
// interpolated between the window's snapshots at time t, independently per
// column and source level. dst must be sized columns by source levels.
//
// The window endpoints are reproduced exactly: t at either timestamp copies
// that snapshot's values rather than round-tripping them through arithmetic.
// Equal timestamps degenerate to the lower snapshot.
func InterpolateInTime(w types.BracketingWindow, t float64, dst [][]float64) {
	span := w.Upper.Timestamp - w.Lower.Timestamp
	if span == 0 || t == w.Lower.Timestamp {
		for c := range dst {
			copy(dst[c], w.Lower.Values[c])
		}
		return
	}
	if t == w.Upper.Timestamp {
		for c := range dst {
			copy(dst[c], w.Upper.Values[c])
		}
		return
	}

	frac := (t - w.Lower.Timestamp) / span
	diff := make([]float64, len(dst[0]))
	for c := range dst {
		floats.SubTo(diff, w.Upper.Values[c], w.Lower.Values[c])
		floats.AddScaledTo(dst[c], w.Lower.Values[c], frac, diff)
	}
}

// InterpolateLevelsInTime fills dst with the source-level coordinates
// interpolated between the two snapshots at time t, for datasets whose level
// coordinates drift between records. Same endpoint and degenerate handling
// as InterpolateInTime.
func InterpolateLevelsInTime(w types.BracketingWindow, t float64, dst []float64) {
	span := w.Upper.Timestamp - w.Lower.Timestamp
	if span == 0 || t == w.Lower.Timestamp {
		copy(dst, w.Lower.Levels)
		return
	}
	if t == w.Upper.Timestamp {
		copy(dst, w.Upper.Levels)
		return
	}

	frac := (t - w.Lower.Timestamp) / span
	diff := make([]float64, len(dst))
	floats.SubTo(diff, w.Upper.Levels, w.Lower.Levels)
	floats.AddScaledTo(dst, w.Lower.Levels, frac, diff)
}
