package nudging

import "sort"

// Remap interpolates every column of src from the source level coordinates
// onto the target level coordinates, writing into dst. src is columns by
// source levels, dst columns by target levels. Columns are independent and
// processed in parallel.
func Remap(srcLevels []float64, src [][]float64, dstLevels []float64, dst [][]float64) {
	forEachColumn(len(src), func(c int) {
		RemapColumn(srcLevels, src[c], dstLevels, dst[c])
	})
}

// RemapColumn performs monotone 1-D linear interpolation of a single column.
// srcLevels must be strictly monotonic, increasing or decreasing; the store
// rejects anything else at load time. Target points outside the source range
// are clamped to the nearest endpoint value (flat extrapolation) so the
// output never leaves the range of the source values at the domain edges.
func RemapColumn(srcLevels, src, dstLevels, dst []float64) {
	n := len(srcLevels)

	// Present the source as ascending regardless of native order.
	at := func(i int) int { return i }
	if n > 1 && srcLevels[n-1] < srcLevels[0] {
		at = func(i int) int { return n - 1 - i }
	}
	lo, hi := srcLevels[at(0)], srcLevels[at(n-1)]

	for j, x := range dstLevels {
		switch {
		case x <= lo:
			dst[j] = src[at(0)]
		case x >= hi:
			dst[j] = src[at(n-1)]
		default:
			k := sort.Search(n, func(i int) bool { return srcLevels[at(i)] >= x })
			x1 := srcLevels[at(k)]
			if x == x1 {
				// Exact hit: reproduce the source value so remapping
				// onto identical levels is the identity.
				dst[j] = src[at(k)]
				continue
			}
			x0 := srcLevels[at(k-1)]
			w := (x - x0) / (x1 - x0)
			dst[j] = src[at(k-1)] + w*(src[at(k)]-src[at(k-1)])
		}
	}
}
