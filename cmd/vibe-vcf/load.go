package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/duckdb"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

const defaultBatchSize = 10000

func newLoadCmd() *cobra.Command {
	var (
		dbPath    string
		batchSize int
		replace   bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "load [flags] <input.vcf>",
		Short: "Decode a VCF file into a DuckDB variant store",
		Long: `Decode every record of a VCF file and append it to a DuckDB database.
Site columns are stored for region queries next to the full encoded record.
The file's header replaces any header already in the store. A file that was
loaded before and has not changed since is skipped unless --force is given.`,
		Example: `  vibe-vcf load --db variants.duckdb input.vcf.gz
  vibe-vcf load --db variants.duckdb --replace --exclude-format AD input.vcf`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if batchSize <= 0 {
				return usageErrorf("--batch must be positive")
			}
			return runLoad(cmd, args[0], dbPath, batchSize, replace, force)
		},
	}

	addReaderFlags(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "variants.duckdb", "DuckDB database path")
	cmd.Flags().IntVar(&batchSize, "batch", defaultBatchSize, "variants per append batch")
	cmd.Flags().BoolVar(&replace, "replace", false, "clear the store before loading")
	cmd.Flags().BoolVar(&force, "force", false, "load even if the file was loaded before")

	return cmd
}

func runLoad(cmd *cobra.Command, input, dbPath string, batchSize int, replace, force bool) error {
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

	if replace {
		if err := store.ClearVariants(); err != nil {
			return err
		}
	}

	var fp *duckdb.FileFingerprint
	if input != "-" {
		f, err := duckdb.StatFile(input)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		fp = &f
		loaded, n, err := store.SourceLoaded(f)
		if err != nil {
			return err
		}
		if loaded && !force {
			logger.Info("input already loaded, skipping",
				zap.String("input", input),
				zap.Int64("variants", n))
			return nil
		}
	}

	p, err := openInput(input, readerOptions(), logger)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := store.SaveHeader(p.Header()); err != nil {
		return err
	}

	batch := make([]*vcf.Variant, 0, batchSize)
	flush := func() error {
		if err := store.WriteVariants(batch); err != nil {
			return err
		}
		logger.Debug("appended batch", zap.Int("variants", len(batch)))
		batch = batch[:0]
		return nil
	}

	stats, err := decodeStream(cmd.Context(), p, viper.GetInt(keyWorkers), viper.GetBool(keySkipInvalid), logger,
		func(v *vcf.Variant) error {
			batch = append(batch, v)
			if len(batch) == batchSize {
				return flush()
			}
			return nil
		})
	if err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	if fp != nil {
		if err := store.SaveSource(*fp, int64(stats.Decoded)); err != nil {
			return err
		}
	}

	logger.Info("loaded records",
		zap.String("input", input),
		zap.String("db", dbPath),
		zap.Int("records", stats.Decoded),
		zap.Int("skipped", stats.Skipped))
	return nil
}
