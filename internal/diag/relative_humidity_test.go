package diag

import (
	"errors"
	"math"
	"testing"

	"github.com/atmoscale/nudge/internal/host"
	"github.com/atmoscale/nudge/internal/types"
)

func diagGrid(t *testing.T) (*RelativeHumidity, *host.GridsManager, *host.Grid) {
	t.Helper()

	grid, err := host.NewGrid("physics", 2, []float64{1000, 500})
	if err != nil {
		t.Fatalf("creating grid: %v", err)
	}
	for _, name := range []string{FieldTemperature, FieldPressure, FieldVaporMixingRatio} {
		if err := grid.DefineField(name); err != nil {
			t.Fatalf("defining %s: %v", name, err)
		}
	}

	gm := host.NewGridsManager()
	gm.Add(grid)
	return NewRelativeHumidity("physics", nil), gm, grid
}

func TestRelativeHumidityFunction(t *testing.T) {
	tests := []struct {
		name     string
		tempK    float64
		presPa   float64
		qv       float64
		expected float64
		epsilon  float64
	}{
		{
			// qsat(300 K, 1000 hPa) is about 0.0223 kg/kg.
			name:  "warm surface air at half saturation",
			tempK: 300, presPa: 100000, qv: 0.01114,
			expected: 0.5, epsilon: 0.01,
		},
		{
			name:  "dry air",
			tempK: 280, presPa: 90000, qv: 0,
			expected: 0, epsilon: 0,
		},
		{
			// qsat(273.15 K, 1000 hPa) is about 0.00380 kg/kg.
			name:  "freezing point near saturation",
			tempK: 273.15, presPa: 100000, qv: 0.0038,
			expected: 1.0, epsilon: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := relativeHumidity(tt.tempK, tt.presPa, tt.qv)
			if math.Abs(got-tt.expected) > tt.epsilon {
				t.Errorf("expected %g ± %g, got %g", tt.expected, tt.epsilon, got)
			}
		})
	}
}

func TestRelativeHumidityProcess(t *testing.T) {
	d, gm, grid := diagGrid(t)

	if err := d.SetGrids(gm); err != nil {
		t.Fatalf("set_grids: %v", err)
	}
	if err := d.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !grid.HasField(FieldRelativeHumidity) {
		t.Fatal("initialize should define the output field")
	}

	temp, _ := grid.MutableField(FieldTemperature)
	pres, _ := grid.MutableField(FieldPressure)
	qv, _ := grid.MutableField(FieldVaporMixingRatio)
	for c := range temp {
		for l := range temp[c] {
			temp[c][l] = 300
			pres[c][l] = 100000
			qv[c][l] = 0.01114
		}
	}

	if err := d.Run(0, 60); err != nil {
		t.Fatalf("run: %v", err)
	}

	rh, _ := grid.MutableField(FieldRelativeHumidity)
	for c := range rh {
		for l := range rh[c] {
			if math.Abs(rh[c][l]-0.5) > 0.01 {
				t.Errorf("column %d level %d: expected RH near 0.5, got %g", c, l, rh[c][l])
			}
		}
	}

	if err := d.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
}

func TestRelativeHumidityMissingInput(t *testing.T) {
	grid, err := host.NewGrid("physics", 1, []float64{850})
	if err != nil {
		t.Fatalf("creating grid: %v", err)
	}
	if err := grid.DefineField(FieldTemperature); err != nil {
		t.Fatalf("defining field: %v", err)
	}
	gm := host.NewGridsManager()
	gm.Add(grid)

	d := NewRelativeHumidity("physics", nil)
	if err := d.SetGrids(gm); err != nil {
		t.Fatalf("set_grids: %v", err)
	}
	if err := d.Initialize(); !errors.Is(err, types.ErrConfig) {
		t.Errorf("expected ErrConfig for missing inputs, got %v", err)
	}
}

func TestRelativeHumidityLifecycle(t *testing.T) {
	d, gm, _ := diagGrid(t)
	if err := d.SetGrids(gm); err != nil {
		t.Fatalf("set_grids: %v", err)
	}
	if err := d.Run(0, 60); !errors.Is(err, types.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState before initialize, got %v", err)
	}
}
