package nudging

import (
	"math"
	"testing"
)

func TestRemapColumn(t *testing.T) {
	tests := []struct {
		name      string
		srcLevels []float64
		src       []float64
		dstLevels []float64
		expected  []float64
		epsilon   float64
	}{
		{
			name:      "identical levels is the identity",
			srcLevels: []float64{1000, 850, 700, 500},
			src:       []float64{288.1, 281.7, 272.3, 255.9},
			dstLevels: []float64{1000, 850, 700, 500},
			expected:  []float64{288.1, 281.7, 272.3, 255.9},
			epsilon:   0, // exact
		},
		{
			name:      "interior interpolation, increasing levels",
			srcLevels: []float64{500, 1000},
			src:       []float64{255, 305},
			dstLevels: []float64{750},
			expected:  []float64{280},
			epsilon:   1e-12,
		},
		{
			name:      "interior interpolation, decreasing levels",
			srcLevels: []float64{1000, 500},
			src:       []float64{305, 255},
			dstLevels: []float64{1000, 750, 500},
			expected:  []float64{305, 280, 255},
			epsilon:   1e-12,
		},
		{
			name:      "targets outside the range clamp flat",
			srcLevels: []float64{800, 600},
			src:       []float64{290, 270},
			dstLevels: []float64{1000, 800, 600, 400},
			expected:  []float64{290, 290, 270, 270},
			epsilon:   0,
		},
		{
			name:      "single source level clamps everywhere",
			srcLevels: []float64{700},
			src:       []float64{273.15},
			dstLevels: []float64{1000, 700, 400},
			expected:  []float64{273.15, 273.15, 273.15},
			epsilon:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]float64, len(tt.dstLevels))
			RemapColumn(tt.srcLevels, tt.src, tt.dstLevels, dst)

			for i := range tt.expected {
				if math.Abs(dst[i]-tt.expected[i]) > tt.epsilon {
					t.Errorf("target %d (level %g): expected %g, got %g",
						i, tt.dstLevels[i], tt.expected[i], dst[i])
				}
			}
		})
	}
}

func TestRemapColumnStaysInSourceRange(t *testing.T) {
	srcLevels := []float64{1000, 900, 800, 700, 600, 500}
	src := []float64{288, 301, 275, 260, 281, 249}
	lo, hi := 249.0, 301.0

	// Targets scattered inside, between, and far outside the source range.
	dstLevels := []float64{1500, 1000, 975, 850, 733, 601, 500, 420, 10}
	dst := make([]float64, len(dstLevels))
	RemapColumn(srcLevels, src, dstLevels, dst)

	for i, v := range dst {
		if v < lo || v > hi {
			t.Errorf("target level %g: value %g outside source range [%g, %g]",
				dstLevels[i], v, lo, hi)
		}
	}
}

func TestRemapParallelMatchesSerial(t *testing.T) {
	const cols, srcN, dstN = 37, 12, 9

	srcLevels := make([]float64, srcN)
	for i := range srcLevels {
		srcLevels[i] = 1000 - 50*float64(i)
	}
	dstLevels := []float64{1100, 990, 875, 760, 655, 550, 505, 470, 300}

	src := newMatrix(cols, srcN)
	for c := range src {
		for l := range src[c] {
			src[c][l] = 250 + float64(c)*0.5 + float64(l)*1.25
		}
	}

	parallel := newMatrix(cols, dstN)
	Remap(srcLevels, src, dstLevels, parallel)

	for c := 0; c < cols; c++ {
		serial := make([]float64, dstN)
		RemapColumn(srcLevels, src[c], dstLevels, serial)
		for j := range serial {
			if parallel[c][j] != serial[j] {
				t.Fatalf("column %d target %d: parallel %g != serial %g",
					c, j, parallel[c][j], serial[j])
			}
		}
	}
}
