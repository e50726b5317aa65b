package vcf

import (
	"bufio"
	"io"
)

// Writer writes a VCF header and encoded records to an io.Writer.
type Writer struct {
	w       *bufio.Writer
	encoder *Encoder
	count   int
}

// NewWriter creates a VCF writer that encodes records against h.
func NewWriter(w io.Writer, h *Header, opts WriterOptions) *Writer {
	return &Writer{
		w:       bufio.NewWriter(w),
		encoder: NewEncoder(h, opts),
	}
}

// WriteHeader writes the header lines regenerated from the Header, ending
// with the #CHROM line.
func (vw *Writer) WriteHeader() error {
	for _, line := range vw.encoder.Header().Lines() {
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write encodes v and writes it as one data line.
func (vw *Writer) Write(v *Variant) error {
	line, err := vw.encoder.Encode(v)
	if err != nil {
		return err
	}
	return vw.WriteLine(line)
}

// WriteLine writes an already encoded data line.
func (vw *Writer) WriteLine(line string) error {
	if _, err := vw.w.WriteString(line); err != nil {
		return err
	}
	if err := vw.w.WriteByte('\n'); err != nil {
		return err
	}
	vw.count++
	return nil
}

// Count returns the number of data lines written.
func (vw *Writer) Count() int {
	return vw.count
}

// Flush flushes the underlying writer.
func (vw *Writer) Flush() error {
	return vw.w.Flush()
}
