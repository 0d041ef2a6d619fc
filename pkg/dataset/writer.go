package dataset

import (
	"database/sql"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/atmoscale/nudge/internal/types"
)

// Writer builds a dataset file one time sample at a time. Entries must be
// appended in strictly increasing timestamp order.
type Writer struct {
	db       *sql.DB
	path     string
	meta     Meta
	lastTS   float64
	hasEntry bool
}

// Create creates a new dataset file at path with the given metadata,
// replacing nothing: creation fails if the schema cannot be installed.
func Create(path string, meta Meta) (*Writer, error) {
	if meta.FieldName == "" || meta.NumColumns <= 0 || meta.NumSourceLevels <= 0 {
		return nil, fmt.Errorf("%w: incomplete dataset meta %+v", types.ErrConfig, meta)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("creating dataset %s: %w", path, err)
	}

	schema := `
		CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		CREATE TABLE entries (
			idx       INTEGER PRIMARY KEY,
			timestamp REAL NOT NULL UNIQUE,
			levels    BLOB NOT NULL,
			vals      BLOB NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("installing schema in %s: %w", path, err)
	}

	metaRows := map[string]string{
		"field_name":        meta.FieldName,
		"units":             meta.Units,
		"num_columns":       fmt.Sprintf("%d", meta.NumColumns),
		"num_source_levels": fmt.Sprintf("%d", meta.NumSourceLevels),
	}
	for k, v := range metaRows {
		if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			db.Close()
			return nil, fmt.Errorf("writing meta %s in %s: %w", k, path, err)
		}
	}

	return &Writer{db: db, path: path, meta: meta, lastTS: math.Inf(-1)}, nil
}

// Append adds one time sample. The shape of levels and values must match the
// metadata, and timestamp must exceed the previously appended one.
func (w *Writer) Append(timestamp float64, levels []float64, values [][]float64) error {
	if w.hasEntry && timestamp <= w.lastTS {
		return fmt.Errorf("%w: timestamp %g not after previous %g in %s",
			types.ErrDataFormat, timestamp, w.lastTS, w.path)
	}
	if len(levels) != w.meta.NumSourceLevels {
		return fmt.Errorf("%w: %d levels, expected %d", types.ErrDataFormat, len(levels), w.meta.NumSourceLevels)
	}
	if len(values) != w.meta.NumColumns {
		return fmt.Errorf("%w: %d columns, expected %d", types.ErrDataFormat, len(values), w.meta.NumColumns)
	}
	for c, col := range values {
		if len(col) != w.meta.NumSourceLevels {
			return fmt.Errorf("%w: column %d has %d levels, expected %d",
				types.ErrDataFormat, c, len(col), w.meta.NumSourceLevels)
		}
	}

	levelsBlob, err := msgpack.Marshal(levels)
	if err != nil {
		return fmt.Errorf("encoding levels: %w", err)
	}
	valsBlob, err := msgpack.Marshal(values)
	if err != nil {
		return fmt.Errorf("encoding values: %w", err)
	}

	_, err = w.db.Exec(`INSERT INTO entries (timestamp, levels, vals) VALUES (?, ?, ?)`,
		timestamp, levelsBlob, valsBlob)
	if err != nil {
		return fmt.Errorf("appending entry at t=%g to %s: %w", timestamp, w.path, err)
	}
	w.lastTS = timestamp
	w.hasEntry = true
	return nil
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	return w.db.Close()
}
