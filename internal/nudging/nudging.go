// Package nudging implements data-driven relaxation of a simulation field
// toward a time-series reference dataset: snapshot windowing over the
// dataset, linear interpolation in time, monotone vertical remapping onto
// the model levels, and the per-step relaxation tendency.
package nudging

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atmoscale/nudge/internal/host"
	"github.com/atmoscale/nudge/internal/log"
	"github.com/atmoscale/nudge/internal/observability"
	"github.com/atmoscale/nudge/internal/process"
	"github.com/atmoscale/nudge/internal/types"
	"github.com/atmoscale/nudge/pkg/config"
	"github.com/atmoscale/nudge/pkg/dataset"
)

// Process is the nudging atmosphere process. One instance nudges exactly one
// named field on one grid; nudging several fields means instantiating
// several processes.
type Process struct {
	process.Lifecycle

	id      uuid.UUID
	cfg     config.Config
	logger  *zap.SugaredLogger
	metrics *observability.Metrics

	grid  *host.Grid
	shape types.GridShape
	ds    *dataset.Handle
	store *SnapshotStore
}

// New creates a nudging process from a validated-at-initialize config.
// A nil metrics falls back to unregistered collectors.
func New(cfg config.Config, logger *zap.SugaredLogger, metrics *observability.Metrics) *Process {
	if logger == nil {
		logger = log.GetSugaredLogger()
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Process{
		id:      uuid.New(),
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
	}
}

// Name returns the process name.
func (p *Process) Name() string { return "nudging" }

// Type returns the process type.
func (p *Process) Type() process.Type { return process.Physics }

// SetGrids resolves the configured grid and records the column and model
// level counts. Must be called before Initialize.
func (p *Process) SetGrids(gm *host.GridsManager) error {
	if err := p.RequireState("set_grids", process.Uninitialized); err != nil {
		return err
	}
	g, err := gm.Grid(p.cfg.GridName)
	if err != nil {
		return err
	}
	p.grid = g
	return nil
}

// Initialize validates the configuration, opens the reference dataset, and
// seeds the bracketing window from its first two entries.
func (p *Process) Initialize() error {
	if err := p.RequireState("initialize", process.Uninitialized); err != nil {
		return err
	}
	if p.grid == nil {
		return fmt.Errorf("%w: initialize called before set_grids", types.ErrInvalidState)
	}
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if !p.grid.HasField(p.cfg.FieldName) {
		return fmt.Errorf("%w: target field %q does not exist on grid %q",
			types.ErrConfig, p.cfg.FieldName, p.grid.Name())
	}

	ds, err := dataset.Open(p.cfg.Datafile)
	if err != nil {
		return err
	}

	meta := ds.Meta()
	if meta.NumColumns != p.grid.NumColumns() {
		ds.Close()
		return fmt.Errorf("%w: dataset %s has %d columns, grid %q has %d",
			types.ErrDataFormat, p.cfg.Datafile, meta.NumColumns, p.grid.Name(), p.grid.NumColumns())
	}

	shape := types.GridShape{
		NumColumns:      p.grid.NumColumns(),
		NumModelLevels:  p.grid.NumLevels(),
		NumSourceLevels: meta.NumSourceLevels,
	}
	if err := shape.Validate(); err != nil {
		ds.Close()
		return err
	}

	store, err := NewSnapshotStore(ds, shape, p.metrics)
	if err != nil {
		ds.Close()
		return err
	}

	p.ds = ds
	p.shape = shape
	p.store = store
	p.Advance(process.Initialized)

	p.logger.Infow("nudging initialized",
		"instance", p.id.String(),
		"grid", p.grid.Name(),
		"field", p.cfg.FieldName,
		"datafile", p.cfg.Datafile,
		"columns", shape.NumColumns,
		"model_levels", shape.NumModelLevels,
		"source_levels", shape.NumSourceLevels,
		"relaxation_timescale_s", p.cfg.RelaxationTimescaleSeconds,
	)
	return nil
}

// Run performs one nudging step at currentTime with step size dt: advance
// the window if needed, interpolate in time, remap onto the model levels,
// and relax the target field toward the result. Any failure in the chain is
// surfaced to the caller; nudging is expected to cover the whole run, so a
// gap in the reference data halts the step rather than being skipped.
func (p *Process) Run(currentTime, dt float64) error {
	if err := p.RequireState("run", process.Initialized, process.Running); err != nil {
		return err
	}
	start := time.Now()

	window, err := p.store.EnsureWindow(currentTime)
	if err != nil {
		p.metrics.RunErrors.Inc()
		return err
	}

	// Step-scoped temporaries, sized only by dimensions fixed at
	// initialization.
	srcLevels := make([]float64, p.shape.NumSourceLevels)
	InterpolateLevelsInTime(window, currentTime, srcLevels)

	interp := newMatrix(p.shape.NumColumns, p.shape.NumSourceLevels)
	InterpolateInTime(window, currentTime, interp)

	remapped := newMatrix(p.shape.NumColumns, p.shape.NumModelLevels)
	Remap(srcLevels, interp, p.grid.LevelCoords(), remapped)

	state, err := p.grid.MutableField(p.cfg.FieldName)
	if err != nil {
		p.metrics.RunErrors.Inc()
		return err
	}
	ApplyTendency(state, remapped, p.cfg.RelaxationTimescaleSeconds, dt)

	p.Advance(process.Running)
	p.metrics.RunSteps.Inc()
	p.metrics.RunStepDuration.Observe(time.Since(start).Seconds())

	p.logger.Debugw("nudging step applied",
		"t", currentTime, "dt", dt,
		"window_lower", window.Lower.Timestamp, "window_upper", window.Upper.Timestamp)
	return nil
}

// Finalize releases the dataset handle and the held snapshots. Run after
// Finalize is ErrInvalidState.
func (p *Process) Finalize() error {
	if err := p.RequireState("finalize", process.Initialized, process.Running); err != nil {
		return err
	}

	p.store.Release()
	p.store = nil
	err := p.ds.Close()
	p.ds = nil
	p.Advance(process.Finalized)

	p.logger.Infow("nudging finalized", "instance", p.id.String())
	return err
}

func newMatrix(rows, cols int) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}
