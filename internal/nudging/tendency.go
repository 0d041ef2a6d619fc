package nudging

import "gonum.org/v1/gonum/floats"

// ApplyTendency relaxes state toward ref in place:
//
//	state += (ref - state) * min(1, dt/tau)
//
// The clamp to 1 prevents overshoot when the step exceeds the relaxation
// timescale, so the update is stable for any dt. At full relaxation the
// reference is copied through exactly. Columns are independent and processed
// in parallel.
func ApplyTendency(state, ref [][]float64, tau, dt float64) {
	factor := dt / tau
	if factor >= 1 {
		forEachColumn(len(state), func(c int) {
			copy(state[c], ref[c])
		})
		return
	}

	forEachColumn(len(state), func(c int) {
		diff := make([]float64, len(state[c]))
		floats.SubTo(diff, ref[c], state[c])
		floats.AddScaled(state[c], factor, diff)
	})
}
