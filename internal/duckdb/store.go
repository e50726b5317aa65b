// Package duckdb stores decoded VCF records in DuckDB.
// Each variant is kept as queryable site columns plus its CBOR-encoded
// record, so region queries return full Variants with their calls.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for decoded variants.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS variants (
			chrom VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT,
			ref VARCHAR,
			alts VARCHAR,
			qual DOUBLE,
			filters VARCHAR,
			record BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS vcf_header (
			header BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			path VARCHAR PRIMARY KEY,
			size BIGINT,
			mod_time_ns BIGINT,
			variants BIGINT
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
