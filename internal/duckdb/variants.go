package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-vcf/internal/record"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

// WriteVariants batch-inserts variants into DuckDB using the Appender API.
func (s *Store) WriteVariants(variants []*vcf.Variant) error {
	if len(variants) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variants")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, v := range variants {
		blob, err := record.MarshalVariant(v)
		if err != nil {
			return err
		}
		var qual driver.Value
		if v.HasQuality() {
			qual = v.Quality
		}
		if err := appender.AppendRow(
			v.ReferenceName, v.Start, v.End, v.ReferenceBases,
			strings.Join(v.AlternateBases, ","), qual, strings.Join(v.Filters, ";"),
			blob,
		); err != nil {
			return fmt.Errorf("append variant %s:%d: %w", v.ReferenceName, v.Pos(), err)
		}
	}

	return appender.Flush()
}

// ClearVariants removes all stored variants, the header and loaded sources.
func (s *Store) ClearVariants() error {
	for _, table := range []string{"variants", "vcf_header", "sources"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Count returns the number of stored variants.
func (s *Store) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM variants").Scan(&count); err != nil {
		return 0, fmt.Errorf("count variants: %w", err)
	}
	return count, nil
}

// QueryRegion returns the variants on chrom overlapping the 0-based half-open
// interval [start, end), ordered by start.
func (s *Store) QueryRegion(chrom string, start, end int64) ([]*vcf.Variant, error) {
	rows, err := s.db.Query(`SELECT record FROM variants
		WHERE chrom=? AND start_pos < ? AND end_pos > ?
		ORDER BY start_pos, end_pos`, chrom, end, start)
	if err != nil {
		return nil, fmt.Errorf("query region: %w", err)
	}
	defer rows.Close()

	var variants []*vcf.Variant
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		v, err := record.UnmarshalVariant(blob)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// SaveHeader replaces the stored header. Records in the store are only
// re-encodable against this header.
func (s *Store) SaveHeader(h *vcf.Header) error {
	blob, err := record.MarshalHeader(h)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM vcf_header"); err != nil {
		return fmt.Errorf("clear header: %w", err)
	}
	if _, err := s.db.Exec("INSERT INTO vcf_header VALUES (?)", blob); err != nil {
		return fmt.Errorf("insert header: %w", err)
	}
	return nil
}

// LoadHeader returns the stored header, or nil when none was saved.
func (s *Store) LoadHeader() (*vcf.Header, error) {
	rows, err := s.db.Query("SELECT header FROM vcf_header LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("query header: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var blob []byte
	if err := rows.Scan(&blob); err != nil {
		return nil, fmt.Errorf("scan header: %w", err)
	}
	return record.UnmarshalHeader(blob)
}
