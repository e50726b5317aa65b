package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

func newHeaderCmd() *cobra.Command {
	var (
		asJSON bool
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "header [flags] <input.vcf>",
		Short: "Validate and print a VCF header",
		Long: `Parse the header of a VCF file, validate its INFO, FORMAT, FILTER and contig
declarations, and print it. By default the header is regenerated from the
parsed records; --raw prints the lines as read.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := vcf.NewParser(args[0], vcf.ReaderOptions{})
			if err != nil {
				return err
			}
			defer p.Close()

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(p.Header().Records())
			case raw:
				for _, line := range p.HeaderLines() {
					fmt.Fprintln(out, line)
				}
			default:
				for _, line := range p.Header().Lines() {
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the header records as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the header lines as read")

	return cmd
}
