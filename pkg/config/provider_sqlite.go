package config

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// DefaultConfigName is the row the SQLite provider reads and writes.
const DefaultConfigName = "default"

// SQLiteProvider implements ConfigProvider for configuration stored in the
// reports database, one YAML document per named row.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
	name   string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS configs (
			name       TEXT PRIMARY KEY,
			yaml       TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create configs table: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
		name:   DefaultConfigName,
	}, nil
}

// LoadConfig loads the stored configuration, or the defaults when nothing
// has been stored yet.
func (s *SQLiteProvider) LoadConfig() (*Config, error) {
	var doc string
	err := s.db.QueryRow(`SELECT yaml FROM configs WHERE name = ?`, s.name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query config %q: %w", s.name, err)
	}

	cfg, err := Parse([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("config %q in %s: %w", s.name, s.dbPath, err)
	}
	return cfg, nil
}

// SaveConfig stores cfg, replacing any previous version.
func (s *SQLiteProvider) SaveConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	doc, err := Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO configs (name, yaml, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET yaml = excluded.yaml, updated_at = excluded.updated_at`,
		s.name, string(doc))
	if err != nil {
		return fmt.Errorf("failed to store config %q: %w", s.name, err)
	}
	return nil
}

// IsReadOnly returns false since the database can be updated
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
