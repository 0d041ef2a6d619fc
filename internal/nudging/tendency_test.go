package nudging

import (
	"math"
	"testing"
)

func TestApplyTendency(t *testing.T) {
	tests := []struct {
		name     string
		state    [][]float64
		ref      [][]float64
		tau      float64
		dt       float64
		expected [][]float64
		epsilon  float64
	}{
		{
			name:     "dt equal to timescale fully relaxes",
			state:    [][]float64{{295, 245, 255}},
			ref:      [][]float64{{305, 280, 255}},
			tau:      5,
			dt:       5,
			expected: [][]float64{{305, 280, 255}},
			epsilon:  0, // exact
		},
		{
			name:     "dt beyond timescale clamps instead of overshooting",
			state:    [][]float64{{290}},
			ref:      [][]float64{{300}},
			tau:      10,
			dt:       1000,
			expected: [][]float64{{300}},
			epsilon:  0,
		},
		{
			name:     "half step moves halfway",
			state:    [][]float64{{280, 260}, {290, 270}},
			ref:      [][]float64{{300, 240}, {290, 280}},
			tau:      100,
			dt:       50,
			expected: [][]float64{{290, 250}, {290, 275}},
			epsilon:  1e-12,
		},
		{
			name:     "tiny dt leaves the state nearly unchanged",
			state:    [][]float64{{280}},
			ref:      [][]float64{{300}},
			tau:      3600,
			dt:       1e-9,
			expected: [][]float64{{280}},
			epsilon:  1e-10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ApplyTendency(tt.state, tt.ref, tt.tau, tt.dt)

			for c := range tt.expected {
				for l := range tt.expected[c] {
					if math.Abs(tt.state[c][l]-tt.expected[c][l]) > tt.epsilon {
						t.Errorf("column %d level %d: expected %g ± %g, got %g",
							c, l, tt.expected[c][l], tt.epsilon, tt.state[c][l])
					}
				}
			}
		})
	}
}

func TestApplyTendencyMonotoneApproach(t *testing.T) {
	// Repeated small steps must approach the reference without ever
	// crossing it.
	state := [][]float64{{280}}
	ref := [][]float64{{300}}

	prev := state[0][0]
	for i := 0; i < 50; i++ {
		ApplyTendency(state, ref, 600, 60)
		v := state[0][0]
		if v < prev {
			t.Fatalf("step %d: state %g moved away from reference", i, v)
		}
		if v > ref[0][0] {
			t.Fatalf("step %d: state %g overshot reference %g", i, v, ref[0][0])
		}
		prev = v
	}

	if math.Abs(state[0][0]-300) > 1 {
		t.Errorf("after 50 steps expected state near 300, got %g", state[0][0])
	}
}
