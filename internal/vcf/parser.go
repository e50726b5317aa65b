package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// Parser reads variants from a VCF file.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	gzipReader  *gzip.Reader
	lineNumber  int
	headerLines []string
	decoder     *Decoder
	logger      *zap.Logger
	skipInvalid bool
	skipped     int
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped or bgzipped VCF (.vcf.gz) files.
func NewParser(path string, opts ReaderOptions) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin, opts)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file, logger: zap.NewNop()}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	_, err = io.ReadFull(file, buf)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	_, err = file.Seek(0, io.SeekStart)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b). bgzip files are multi-member
	// gzip streams, which the reader concatenates.
	if buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(opts); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader, opts ReaderOptions) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
		logger: zap.NewNop(),
	}

	if err := p.parseHeader(opts); err != nil {
		return nil, err
	}

	return p, nil
}

// SetLogger sets the logger for skipped-record warnings.
func (p *Parser) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetSkipInvalid configures whether records that fail to decode are logged
// and skipped instead of returned as errors.
func (p *Parser) SetSkipInvalid(skip bool) {
	p.skipInvalid = skip
}

// parseHeader reads the VCF header lines and builds the Header.
func (p *Parser) parseHeader(opts ReaderOptions) error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.headerLines = append(p.headerLines, line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.headerLines = append(p.headerLines, line)
			h, err := ParseHeader(p.headerLines)
			if err != nil {
				return &ParseError{Line: p.lineNumber, Err: err}
			}
			p.decoder = NewDecoder(h, opts)
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next variant from the VCF file.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.ReadLine()
		if err != nil || line == "" {
			return nil, err
		}

		v, err := p.decoder.Decode(line)
		if err == nil {
			return v, nil
		}

		perr := &ParseError{Line: p.lineNumber, Err: err}
		if !p.skipInvalid {
			return nil, perr
		}
		p.skipped++
		p.logger.Warn("skipping invalid record", zap.Int("line", p.lineNumber), zap.Error(err))
	}
}

// ReadLine returns the next non-empty data line without decoding it, or ""
// at end of input.
func (p *Parser) ReadLine() (string, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if errors.Is(err, io.EOF) {
				return "", nil
			}
			return "", fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			return line, nil
		}
	}
}

// Header returns the parsed VCF header.
func (p *Parser) Header() *Header {
	return p.decoder.Header()
}

// Decoder returns the decoder bound to the parsed header.
func (p *Parser) Decoder() *Decoder {
	return p.decoder
}

// HeaderLines returns the raw VCF header lines.
func (p *Parser) HeaderLines() []string {
	return p.headerLines
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.decoder.Header().SampleNames()
}

// Skipped returns the number of invalid records skipped so far.
func (p *Parser) Skipped() int {
	return p.skipped
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
