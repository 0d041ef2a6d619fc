// nudge-dataset-gen builds a reference dataset file from a CSV time series.
//
// Each CSV row holds one time sample: the timestamp in seconds followed by
// columns*levels field values in row-major order (all levels of column 0,
// then column 1, and so on). The source-level coordinates are passed on the
// command line and shared by every sample.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atmoscale/nudge/internal/log"
	"github.com/atmoscale/nudge/pkg/dataset"
)

func main() {
	var (
		csvFile   = flag.String("csv", "", "Path to input CSV time series")
		outFile   = flag.String("out", "reference.db", "Path to output dataset file")
		fieldName = flag.String("field", "T_mid", "Name of the field the dataset nudges")
		units     = flag.String("units", "K", "Units of the field")
		levelsArg = flag.String("levels", "", "Comma-separated source-level coordinates, e.g. 1000,850,500")
		debug     = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *csvFile == "" || *levelsArg == "" {
		log.Fatalf("both -csv and -levels are required")
	}

	levels, err := parseLevels(*levelsArg)
	if err != nil {
		log.Fatalf("invalid -levels: %v", err)
	}

	if err := generate(*csvFile, *outFile, *fieldName, *units, levels); err != nil {
		log.Fatalf("dataset generation failed: %v", err)
	}
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

func generate(csvPath, outPath, fieldName, units string, levels []float64) error {
	f, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("reading %s: %w", csvPath, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s is empty", csvPath)
	}

	numLevels := len(levels)
	numValues := len(rows[0]) - 1
	if numValues <= 0 || numValues%numLevels != 0 {
		return fmt.Errorf("row has %d values, not a multiple of %d levels", numValues, numLevels)
	}
	numCols := numValues / numLevels

	w, err := dataset.Create(outPath, dataset.Meta{
		FieldName:       fieldName,
		Units:           units,
		NumColumns:      numCols,
		NumSourceLevels: numLevels,
	})
	if err != nil {
		return err
	}
	defer w.Close()

	for i, row := range rows {
		if len(row) != numValues+1 {
			return fmt.Errorf("row %d has %d fields, expected %d", i, len(row), numValues+1)
		}
		ts, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return fmt.Errorf("row %d: bad timestamp %q: %w", i, row[0], err)
		}

		values := make([][]float64, numCols)
		for c := 0; c < numCols; c++ {
			values[c] = make([]float64, numLevels)
			for l := 0; l < numLevels; l++ {
				v, err := strconv.ParseFloat(row[1+c*numLevels+l], 64)
				if err != nil {
					return fmt.Errorf("row %d column %d level %d: %w", i, c, l, err)
				}
				values[c][l] = v
			}
		}

		if err := w.Append(ts, levels, values); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	log.Infow("dataset written",
		"path", outPath, "field", fieldName,
		"entries", len(rows), "columns", numCols, "source_levels", numLevels)
	return nil
}
