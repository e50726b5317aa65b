package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

// Config keys shared by several commands.
const (
	keyExcludeInfo    = "reader.exclude_info"
	keyExcludeFormat  = "reader.exclude_format"
	keyGLPLInInfo     = "reader.gl_pl_in_info"
	keyWriterExclInfo = "writer.exclude_info"
	keyWriterExclFmt  = "writer.exclude_format"
	keyRoundQual      = "writer.round_qual"
	keyWorkers        = "workers"
	keySkipInvalid    = "skip_invalid"
)

// addReaderFlags registers the decoding flags on cmd.
func addReaderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("exclude-info", nil, "INFO fields to drop while decoding (comma-separated)")
	f.StringSlice("exclude-format", nil, "FORMAT fields to drop while decoding (comma-separated)")
	f.Bool("gl-pl-in-info", false, "keep GL/PL in the call info map instead of normalizing to log10 likelihoods")
	f.Int("workers", 0, "number of decode workers (0 = all CPUs)")
	f.Bool("skip-invalid", false, "log and skip records that fail to decode")
}

// addWriterFlags registers the encoding flags on cmd.
func addWriterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("drop-info", nil, "INFO fields to omit when writing (comma-separated)")
	f.StringSlice("drop-format", nil, "FORMAT fields to omit when writing (comma-separated)")
	f.Bool("round-qual", false, "write QUAL with one decimal place")
}

// bindFlags binds the flags a command registered to their config keys. It
// runs per invocation so commands sharing a key do not override each other.
func bindFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		keyExcludeInfo:    "exclude-info",
		keyExcludeFormat:  "exclude-format",
		keyGLPLInInfo:     "gl-pl-in-info",
		keyWorkers:        "workers",
		keySkipInvalid:    "skip-invalid",
		keyWriterExclInfo: "drop-info",
		keyWriterExclFmt:  "drop-format",
		keyRoundQual:      "round-qual",
	}
	for key, name := range bindings {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			continue
		}
		if err := viper.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func likelihoodStorage(inInfo bool) vcf.LikelihoodStorage {
	if inInfo {
		return vcf.LikelihoodsInInfoMap
	}
	return vcf.LikelihoodsInCall
}

// readerOptions builds decoder options from the merged config.
func readerOptions() vcf.ReaderOptions {
	return vcf.ReaderOptions{
		ExcludedInfoFields:   vcf.NewFieldSet(configList(keyExcludeInfo)...),
		ExcludedFormatFields: vcf.NewFieldSet(configList(keyExcludeFormat)...),
		Likelihoods:          likelihoodStorage(viper.GetBool(keyGLPLInInfo)),
	}
}

// writerOptions builds encoder options that are consistent with ro: fields
// the reader dropped stay dropped, and likelihoods are read back from where
// the reader stored them.
func writerOptions(ro vcf.ReaderOptions) vcf.WriterOptions {
	wo := ro.WriterOptions()
	wo.ExcludedInfoFields = union(wo.ExcludedInfoFields, configList(keyWriterExclInfo))
	wo.ExcludedFormatFields = union(wo.ExcludedFormatFields, configList(keyWriterExclFmt))
	wo.RoundQualValues = viper.GetBool(keyRoundQual)
	return wo
}

func union(s vcf.FieldSet, ids []string) vcf.FieldSet {
	out := vcf.NewFieldSet(ids...)
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// configList reads a list-valued key. Values set through the config command
// or the environment arrive as a single comma-separated string.
func configList(key string) []string {
	var out []string
	for _, item := range viper.GetStringSlice(key) {
		for _, id := range strings.Split(item, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// openInput opens a parser on path ("-" for stdin) with logging and
// skip-invalid configured from the command's settings.
func openInput(path string, ro vcf.ReaderOptions, logger *zap.Logger) (*vcf.Parser, error) {
	p, err := vcf.NewParser(path, ro)
	if err != nil {
		return nil, err
	}
	p.SetLogger(logger)
	p.SetSkipInvalid(viper.GetBool(keySkipInvalid))
	return p, nil
}

// openOutput returns a writer for path, or stdout for "" and "-".
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// parseRegion parses a samtools-style region "chrom", "chrom:pos" or
// "chrom:start-end" (1-based, inclusive) into a 0-based half-open interval.
func parseRegion(s string) (chrom string, start, end int64, err error) {
	chrom, span, hasSpan := strings.Cut(s, ":")
	if chrom == "" {
		return "", 0, 0, usageErrorf("invalid region %q: missing chromosome", s)
	}
	if !hasSpan {
		return chrom, 0, maxPos, nil
	}

	span = strings.ReplaceAll(span, ",", "")
	from, to, isRange := strings.Cut(span, "-")
	first, err := strconv.ParseInt(from, 10, 64)
	if err != nil || first < 1 {
		return "", 0, 0, usageErrorf("invalid region %q: bad start position", s)
	}
	last := first
	if isRange {
		if to == "" {
			last = maxPos
		} else if last, err = strconv.ParseInt(to, 10, 64); err != nil || last < first {
			return "", 0, 0, usageErrorf("invalid region %q: bad end position", s)
		}
	}
	return chrom, first - 1, last, nil
}

const maxPos = int64(1) << 62
