package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/duckdb"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

func newQueryCmd() *cobra.Command {
	var (
		dbPath string
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "query [flags] <region>...",
		Short: "Query a DuckDB variant store by region",
		Long: `Return the stored variants overlapping one or more regions. Regions are
written chrom, chrom:pos or chrom:start-end with 1-based inclusive
coordinates. VCF output is encoded against the header saved by load; pass
--gl-pl-in-info if the records were loaded with it.`,
		Example: `  vibe-vcf query --db variants.duckdb chr1:10000-20000
  vibe-vcf query --db variants.duckdb --format json chr7:140753336`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, dbPath, output, format)
		},
	}

	addWriterFlags(cmd)
	cmd.Flags().Bool("gl-pl-in-info", false, "records keep GL/PL in the call info map")
	cmd.Flags().StringVar(&dbPath, "db", "variants.duckdb", "DuckDB database path")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatVCF, "output format: vcf, json, cbor")

	return cmd
}

type region struct {
	chrom      string
	start, end int64
}

func runQuery(cmd *cobra.Command, args []string, dbPath, output, format string) error {
	regions := make([]region, 0, len(args))
	for _, arg := range args {
		chrom, start, end, err := parseRegion(arg)
		if err != nil {
			return err
		}
		regions = append(regions, region{chrom: chrom, start: start, end: end})
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	store, err := duckdb.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	defer out.Close()

	var write func(*vcf.Variant) error
	var finish func() error
	switch format {
	case formatVCF:
		h, err := store.LoadHeader()
		if err != nil {
			return err
		}
		if h == nil {
			return errors.New("store has no header; load a VCF file first")
		}
		w := vcf.NewWriter(out, h, writerOptions(readerOptions()))
		if err := w.WriteHeader(); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		write, finish = w.Write, w.Flush
	default:
		sink, err := newRecordSink(out, format)
		if err != nil {
			return err
		}
		write = func(v *vcf.Variant) error { return sink.Encode(v) }
		finish = func() error { return nil }
	}

	total := 0
	for _, r := range regions {
		variants, err := store.QueryRegion(r.chrom, r.start, r.end)
		if err != nil {
			return err
		}
		for _, v := range variants {
			if err := write(v); err != nil {
				return err
			}
		}
		total += len(variants)
	}
	if err := finish(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	logger.Debug("query finished", zap.Int("regions", len(regions)), zap.Int("records", total))
	return out.Close()
}
