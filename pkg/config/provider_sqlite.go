package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements Provider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the nudging configuration from the SQLite database. The
// expected schema is a single `nudging` table with one row per instance; the
// first row in name order is used.
func (s *SQLiteProvider) LoadConfig() (*Config, error) {
	query := `
		SELECT datafile, relaxation_timescale_seconds, field_name, grid_name
		FROM nudging
		ORDER BY name
		LIMIT 1
	`

	config := &Config{}
	err := s.db.QueryRow(query).Scan(
		&config.Datafile, &config.RelaxationTimescaleSeconds,
		&config.FieldName, &config.GridName,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nudging config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// IsReadOnly returns false since SQLite configurations can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
