// nudge-sim drives the nudging process through a synthetic host run: it
// builds an in-memory grid, registers the nudging process (and the relative
// humidity diagnostic when the nudged field is temperature), and steps the
// process manager over a fixed interval, logging the evolving field mean.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/atmoscale/nudge/internal/diag"
	"github.com/atmoscale/nudge/internal/host"
	"github.com/atmoscale/nudge/internal/log"
	"github.com/atmoscale/nudge/internal/nudging"
	"github.com/atmoscale/nudge/internal/observability"
	"github.com/atmoscale/nudge/internal/process"
	"github.com/atmoscale/nudge/pkg/config"
)

func main() {
	var (
		configFile = flag.String("config", "nudge.yaml", "Path to YAML nudging configuration")
		columns    = flag.Int("columns", 4, "Number of grid columns")
		levelsArg  = flag.String("levels", "1000,850,700,500", "Comma-separated model-level coordinates")
		start      = flag.Float64("start", 0, "Simulation start time in seconds")
		dt         = flag.Float64("dt", 60, "Step size in seconds")
		steps      = flag.Int("steps", 10, "Number of steps to run")
		initial    = flag.Float64("initial", 280, "Initial value of the nudged field")
		debug      = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(*configFile, *columns, *levelsArg, *start, *dt, *steps, *initial); err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
}

// newProvider picks the configuration backend by file extension: .db and
// .sqlite open a SQLite configuration database, anything else is parsed as
// YAML.
func newProvider(configFile string) (config.Provider, error) {
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".db", ".sqlite":
		return config.NewSQLiteProvider(configFile)
	default:
		return config.NewYAMLProvider(configFile), nil
	}
}

func run(configFile string, columns int, levelsArg string, start, dt float64, steps int, initial float64) error {
	provider, err := newProvider(configFile)
	if err != nil {
		return fmt.Errorf("could not open configuration: %w", err)
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	levels, err := parseLevels(levelsArg)
	if err != nil {
		return fmt.Errorf("invalid -levels: %w", err)
	}

	grid, err := host.NewGrid(cfg.GridName, columns, levels)
	if err != nil {
		return err
	}
	if err := grid.DefineField(cfg.FieldName); err != nil {
		return err
	}
	state, err := grid.MutableField(cfg.FieldName)
	if err != nil {
		return err
	}
	for c := range state {
		for l := range state[c] {
			state[c][l] = initial
		}
	}

	gm := host.NewGridsManager()
	gm.Add(grid)

	manager := process.NewManager()
	manager.Register(nudging.New(*cfg, log.GetSugaredLogger(), observability.NewMetrics()))

	// Temperature runs get the relative humidity diagnostic alongside.
	if cfg.FieldName == diag.FieldTemperature {
		for _, name := range []string{diag.FieldPressure, diag.FieldVaporMixingRatio} {
			if err := grid.DefineField(name); err != nil {
				return err
			}
		}
		fillPlausibleMoisture(grid, levels)
		manager.Register(diag.NewRelativeHumidity(cfg.GridName, log.GetSugaredLogger()))
	}

	if err := manager.SetGrids(gm); err != nil {
		return err
	}
	if err := manager.Initialize(); err != nil {
		return err
	}

	for i := 0; i < steps; i++ {
		t := start + float64(i)*dt
		if err := manager.Run(t, dt); err != nil {
			return err
		}
		log.Infow("step complete", "step", i, "t", t, "field_mean", fieldMean(state))
	}

	return manager.Finalize()
}

// fillPlausibleMoisture seeds pressure (treating the level coordinate as
// hPa) and a fixed vapor mixing ratio so the diagnostic has inputs to work
// with.
func fillPlausibleMoisture(grid *host.Grid, levels []float64) {
	pres, _ := grid.MutableField(diag.FieldPressure)
	qv, _ := grid.MutableField(diag.FieldVaporMixingRatio)
	for c := range pres {
		for l := range pres[c] {
			pres[c][l] = levels[l] * 100
			qv[c][l] = 0.005
		}
	}
}

func fieldMean(f [][]float64) float64 {
	var sum float64
	var n int
	for c := range f {
		sum += floats.Sum(f[c])
		n += len(f[c])
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func parseLevels(arg string) ([]float64, error) {
	parts := strings.Split(arg, ",")
	levels := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad level coordinate %q: %w", p, err)
		}
		levels = append(levels, v)
	}
	return levels, nil
}
