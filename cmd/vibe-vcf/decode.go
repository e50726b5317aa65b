package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/record"
	"github.com/inodb/vibe-vcf/internal/vcf"
)

// Record output formats.
const (
	formatJSON = "json"
	formatCBOR = "cbor"
	formatVCF  = "vcf"
)

func newDecodeCmd() *cobra.Command {
	var (
		output     string
		format     string
		withHeader bool
	)

	cmd := &cobra.Command{
		Use:   "decode [flags] <input.vcf>",
		Short: "Decode VCF records into typed variant records",
		Long: `Decode every data line of a VCF file into a typed variant record and write
the records as JSON lines or a CBOR sequence. Use '-' to read stdin.`,
		Example: `  vibe-vcf decode input.vcf.gz
  vibe-vcf decode --format cbor -o variants.cbor input.vcf
  vibe-vcf decode --exclude-info CSQ,ANN --gl-pl-in-info input.vcf`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args[0], output, format, withHeader)
		},
	}

	addReaderFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "record format: json, cbor")
	cmd.Flags().BoolVar(&withHeader, "with-header", false, "emit the header records before the variants")

	return cmd
}

// recordSink writes records in one of the structured formats.
type recordSink interface {
	Encode(v any) error
}

func newRecordSink(w io.Writer, format string) (recordSink, error) {
	switch format {
	case formatJSON:
		return json.NewEncoder(w), nil
	case formatCBOR:
		return record.NewEncoder(w), nil
	}
	return nil, usageErrorf("unknown record format %q (want %s or %s)", format, formatJSON, formatCBOR)
}

func runDecode(cmd *cobra.Command, input, output, format string, withHeader bool) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ro := readerOptions()
	p, err := openInput(input, ro, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	out, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	defer out.Close()

	sink, err := newRecordSink(out, format)
	if err != nil {
		return err
	}

	if withHeader {
		if err := sink.Encode(p.Header().Records()); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	stats, err := decodeStream(cmd.Context(), p, viper.GetInt(keyWorkers), viper.GetBool(keySkipInvalid), logger,
		func(v *vcf.Variant) error {
			return sink.Encode(v)
		})
	if err != nil {
		return err
	}

	logger.Info("decoded records",
		zap.String("input", input),
		zap.Int("records", stats.Decoded),
		zap.Int("skipped", stats.Skipped),
		zap.String("likelihoods", ro.Likelihoods.String()))
	return out.Close()
}
