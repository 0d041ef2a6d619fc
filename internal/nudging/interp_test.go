package nudging

import (
	"math"
	"testing"

	"github.com/atmoscale/nudge/internal/types"
)

func testWindow() types.BracketingWindow {
	return types.BracketingWindow{
		Lower: &types.Snapshot{
			Timestamp: 0,
			Levels:    []float64{1000, 500},
			Values:    [][]float64{{300, 250}, {302, 252}},
		},
		Upper: &types.Snapshot{
			Timestamp: 10,
			Levels:    []float64{1000, 500},
			Values:    [][]float64{{310, 260}, {312, 262}},
		},
	}
}

func TestInterpolateInTime(t *testing.T) {
	tests := []struct {
		name     string
		at       float64
		expected [][]float64
	}{
		{
			name:     "lower endpoint is exact",
			at:       0,
			expected: [][]float64{{300, 250}, {302, 252}},
		},
		{
			name:     "upper endpoint is exact",
			at:       10,
			expected: [][]float64{{310, 260}, {312, 262}},
		},
		{
			name:     "midpoint",
			at:       5,
			expected: [][]float64{{305, 255}, {307, 257}},
		},
		{
			name:     "quarter point",
			at:       2.5,
			expected: [][]float64{{302.5, 252.5}, {304.5, 254.5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testWindow()
			dst := newMatrix(2, 2)
			InterpolateInTime(w, tt.at, dst)

			for c := range tt.expected {
				for l := range tt.expected[c] {
					if dst[c][l] != tt.expected[c][l] {
						t.Errorf("column %d level %d: expected %g, got %g",
							c, l, tt.expected[c][l], dst[c][l])
					}
				}
			}
		})
	}
}

func TestInterpolateInTimeEqualTimestamps(t *testing.T) {
	w := testWindow()
	w.Upper.Timestamp = w.Lower.Timestamp

	dst := newMatrix(2, 2)
	InterpolateInTime(w, w.Lower.Timestamp, dst)

	// Degenerate window returns the lower values rather than dividing by zero.
	for c := range dst {
		for l := range dst[c] {
			if dst[c][l] != w.Lower.Values[c][l] {
				t.Errorf("column %d level %d: expected lower value %g, got %g",
					c, l, w.Lower.Values[c][l], dst[c][l])
			}
		}
	}
}

func TestInterpolateLevelsInTime(t *testing.T) {
	w := testWindow()
	w.Upper.Levels = []float64{1010, 510}

	dst := make([]float64, 2)
	InterpolateLevelsInTime(w, 5, dst)

	expected := []float64{1005, 505}
	for i := range expected {
		if math.Abs(dst[i]-expected[i]) > 1e-12 {
			t.Errorf("level %d: expected %g, got %g", i, expected[i], dst[i])
		}
	}

	// Endpoints reproduce the snapshot coordinates exactly.
	InterpolateLevelsInTime(w, 0, dst)
	if dst[0] != 1000 || dst[1] != 500 {
		t.Errorf("lower endpoint: expected [1000 500], got %v", dst)
	}
	InterpolateLevelsInTime(w, 10, dst)
	if dst[0] != 1010 || dst[1] != 510 {
		t.Errorf("upper endpoint: expected [1010 510], got %v", dst)
	}
}
