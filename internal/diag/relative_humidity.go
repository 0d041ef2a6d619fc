// Package diag implements diagnostic atmosphere processes: secondary
// quantities derived per grid point from existing state fields.
package diag

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/atmoscale/nudge/internal/host"
	"github.com/atmoscale/nudge/internal/log"
	"github.com/atmoscale/nudge/internal/process"
	"github.com/atmoscale/nudge/internal/types"
)

// Field names consumed and produced by the relative humidity diagnostic.
const (
	FieldTemperature      = "T_mid"
	FieldPressure         = "p_mid"
	FieldVaporMixingRatio = "qv"
	FieldRelativeHumidity = "relative_humidity"
)

// RelativeHumidity derives relative humidity from mid-level temperature,
// pressure, and water vapor mixing ratio. It is a pure per-grid-point
// expression with no I/O and no persistent state.
type RelativeHumidity struct {
	process.Lifecycle

	gridName string
	logger   *zap.SugaredLogger
	grid     *host.Grid
}

// NewRelativeHumidity creates the diagnostic for the named grid.
func NewRelativeHumidity(gridName string, logger *zap.SugaredLogger) *RelativeHumidity {
	if logger == nil {
		logger = log.GetSugaredLogger()
	}
	return &RelativeHumidity{gridName: gridName, logger: logger}
}

// Name returns the process name.
func (d *RelativeHumidity) Name() string { return "relative_humidity" }

// Type returns the process type.
func (d *RelativeHumidity) Type() process.Type { return process.Diagnostic }

// SetGrids resolves the configured grid.
func (d *RelativeHumidity) SetGrids(gm *host.GridsManager) error {
	if err := d.RequireState("set_grids", process.Uninitialized); err != nil {
		return err
	}
	g, err := gm.Grid(d.gridName)
	if err != nil {
		return err
	}
	d.grid = g
	return nil
}

// Initialize checks the input fields exist and defines the output field if
// the host has not already done so.
func (d *RelativeHumidity) Initialize() error {
	if err := d.RequireState("initialize", process.Uninitialized); err != nil {
		return err
	}
	if d.grid == nil {
		return fmt.Errorf("%w: initialize called before set_grids", types.ErrInvalidState)
	}
	for _, name := range []string{FieldTemperature, FieldPressure, FieldVaporMixingRatio} {
		if !d.grid.HasField(name) {
			return fmt.Errorf("%w: field %q does not exist on grid %q", types.ErrConfig, name, d.grid.Name())
		}
	}
	if !d.grid.HasField(FieldRelativeHumidity) {
		if err := d.grid.DefineField(FieldRelativeHumidity); err != nil {
			return err
		}
	}
	d.Advance(process.Initialized)
	return nil
}

// Run evaluates the diagnostic over every grid point.
func (d *RelativeHumidity) Run(currentTime, dt float64) error {
	if err := d.RequireState("run", process.Initialized, process.Running); err != nil {
		return err
	}

	temp, err := d.grid.MutableField(FieldTemperature)
	if err != nil {
		return err
	}
	pres, err := d.grid.MutableField(FieldPressure)
	if err != nil {
		return err
	}
	qv, err := d.grid.MutableField(FieldVaporMixingRatio)
	if err != nil {
		return err
	}
	rh, err := d.grid.MutableField(FieldRelativeHumidity)
	if err != nil {
		return err
	}

	for c := range rh {
		for l := range rh[c] {
			rh[c][l] = relativeHumidity(temp[c][l], pres[c][l], qv[c][l])
		}
	}

	d.Advance(process.Running)
	return nil
}

// Finalize has nothing to release.
func (d *RelativeHumidity) Finalize() error {
	if err := d.RequireState("finalize", process.Initialized, process.Running); err != nil {
		return err
	}
	d.Advance(process.Finalized)
	return nil
}

// relativeHumidity computes qv / qsat(T, p) with T in kelvin and p in
// pascals. Saturation vapor pressure follows the Tetens formula over water.
func relativeHumidity(tempK, presPa, qv float64) float64 {
	es := 610.78 * math.Exp(17.269*(tempK-273.15)/(tempK-35.85))
	qsat := 0.622 * es / (presPa - 0.378*es)
	if qsat <= 0 {
		return 0
	}
	return qv / qsat
}
