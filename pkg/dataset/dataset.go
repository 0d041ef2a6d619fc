// Package dataset reads and writes reference-state dataset files: an ordered
// sequence of time-stamped field samples used to nudge a running simulation.
//
// A dataset file is a SQLite database with two tables: a key/value `meta`
// table describing the field and its dimensions, and an `entries` table with
// one row per time sample. Array payloads (source-level coordinates and the
// columns-by-levels value grid) are stored as msgpack blobs, which keeps the
// file self-describing and readable without this package.
package dataset

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"

	"github.com/atmoscale/nudge/internal/types"
)

// Meta describes the contents of a dataset file.
type Meta struct {
	FieldName       string
	Units           string
	NumColumns      int
	NumSourceLevels int
}

// Entry is one decoded time sample.
type Entry struct {
	Timestamp float64
	Levels    []float64   // source-level coordinates
	Values    [][]float64 // [NumColumns][NumSourceLevels]
}

// Handle is an open, read-only dataset file. Reads are serialized with an
// internal mutex so concurrent window advances from multiple grid partitions
// never race on the underlying file.
type Handle struct {
	db    *sql.DB
	path  string
	meta  Meta
	count int
	mu    sync.Mutex
}

// Open opens an existing dataset file and loads its metadata. It returns
// ErrDataFormat if the file is missing, unreadable, or its metadata is
// incomplete.
func Open(path string) (*Handle, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: dataset file %s: %v", types.ErrDataFormat, path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrDataFormat, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrDataFormat, path, err)
	}

	h := &Handle{db: db, path: path}
	if err := h.loadMeta(); err != nil {
		db.Close()
		return nil, err
	}
	if err := h.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&h.count); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: counting entries in %s: %v", types.ErrDataFormat, path, err)
	}
	return h, nil
}

func (h *Handle) loadMeta() error {
	rows, err := h.db.Query(`SELECT key, value FROM meta`)
	if err != nil {
		return fmt.Errorf("%w: reading meta table in %s: %v", types.ErrDataFormat, h.path, err)
	}
	defer rows.Close()

	kv := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return fmt.Errorf("%w: scanning meta row in %s: %v", types.ErrDataFormat, h.path, err)
		}
		kv[k] = v
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: reading meta table in %s: %v", types.ErrDataFormat, h.path, err)
	}

	h.meta.FieldName = kv["field_name"]
	h.meta.Units = kv["units"]
	if h.meta.FieldName == "" {
		return fmt.Errorf("%w: %s has no field_name in meta", types.ErrDataFormat, h.path)
	}
	for key, dst := range map[string]*int{
		"num_columns":       &h.meta.NumColumns,
		"num_source_levels": &h.meta.NumSourceLevels,
	} {
		n, err := strconv.Atoi(kv[key])
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s has invalid %s %q", types.ErrDataFormat, h.path, key, kv[key])
		}
		*dst = n
	}
	return nil
}

// Meta returns the dataset metadata loaded at open.
func (h *Handle) Meta() Meta {
	return h.meta
}

// Path returns the file path the handle was opened from.
func (h *Handle) Path() string {
	return h.path
}

// EntryCount returns the number of time samples in the dataset.
func (h *Handle) EntryCount() int {
	return h.count
}

// ReadEntry reads and decodes the time sample at index i (0-based, in
// timestamp order). The decoded arrays are checked against the dataset
// metadata; a mismatch is an ErrDataFormat.
func (h *Handle) ReadEntry(i int) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if i < 0 || i >= h.count {
		return Entry{}, fmt.Errorf("%w: entry %d out of range [0,%d) in %s",
			types.ErrDataExhausted, i, h.count, h.path)
	}

	var e Entry
	var levelsBlob, valsBlob []byte
	err := h.db.QueryRow(
		`SELECT timestamp, levels, vals FROM entries ORDER BY timestamp ASC LIMIT 1 OFFSET ?`, i,
	).Scan(&e.Timestamp, &levelsBlob, &valsBlob)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: reading entry %d from %s: %v", types.ErrDataFormat, i, h.path, err)
	}

	if err := msgpack.Unmarshal(levelsBlob, &e.Levels); err != nil {
		return Entry{}, fmt.Errorf("%w: decoding levels of entry %d in %s: %v", types.ErrDataFormat, i, h.path, err)
	}
	if err := msgpack.Unmarshal(valsBlob, &e.Values); err != nil {
		return Entry{}, fmt.Errorf("%w: decoding values of entry %d in %s: %v", types.ErrDataFormat, i, h.path, err)
	}

	if len(e.Levels) != h.meta.NumSourceLevels {
		return Entry{}, fmt.Errorf("%w: entry %d in %s has %d levels, meta says %d",
			types.ErrDataFormat, i, h.path, len(e.Levels), h.meta.NumSourceLevels)
	}
	if len(e.Values) != h.meta.NumColumns {
		return Entry{}, fmt.Errorf("%w: entry %d in %s has %d columns, meta says %d",
			types.ErrDataFormat, i, h.path, len(e.Values), h.meta.NumColumns)
	}
	for c, col := range e.Values {
		if len(col) != h.meta.NumSourceLevels {
			return Entry{}, fmt.Errorf("%w: entry %d column %d in %s has %d levels, meta says %d",
				types.ErrDataFormat, i, c, h.path, len(col), h.meta.NumSourceLevels)
		}
	}
	return e, nil
}

// Close releases the underlying database handle.
func (h *Handle) Close() error {
	return h.db.Close()
}
