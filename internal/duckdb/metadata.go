package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// SaveSource records that the file identified by fp was loaded with n variants.
func (s *Store) SaveSource(fp FileFingerprint, n int64) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO sources (path, size, mod_time_ns, variants) VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UnixNano(), n)
	if err != nil {
		return fmt.Errorf("save source %s: %w", fp.Path, err)
	}
	return nil
}

// SourceLoaded reports whether the file identified by fp was already loaded
// unchanged, and how many variants it produced.
func (s *Store) SourceLoaded(fp FileFingerprint) (bool, int64, error) {
	var size, modTime, n int64
	err := s.db.QueryRow(`SELECT size, mod_time_ns, variants FROM sources WHERE path = ?`, fp.Path).
		Scan(&size, &modTime, &n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("lookup source %s: %w", fp.Path, err)
	}
	return size == fp.Size && modTime == fp.ModTime.UnixNano(), n, nil
}
