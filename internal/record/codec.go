// Package record serializes the Variant and header data contract with CBOR
// Core Deterministic Encoding (RFC 8949 §4.2): the same record always
// produces identical bytes. The struct tags of the vcf package are json tags,
// so the same types also marshal to JSON for CLI output.
//
// For buffer-oriented operations (DuckDB blobs):
//
//	data, err := record.MarshalVariant(v)
//	v, err := record.UnmarshalVariant(data)
//
// For streams of records:
//
//	enc := record.NewEncoder(w)
//	dec := record.NewDecoder(r)
package record

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("record: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("record: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder.
type Encoder = cbor.Encoder

// Decoder is a CBOR stream decoder.
type Decoder = cbor.Decoder

// NewEncoder returns a stream encoder writing a CBOR sequence to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a stream decoder reading a CBOR sequence from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// MarshalVariant encodes a variant record.
func MarshalVariant(v *vcf.Variant) ([]byte, error) {
	data, err := Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal variant %s:%d: %w", v.ReferenceName, v.Pos(), err)
	}
	return data, nil
}

// UnmarshalVariant decodes a variant record.
func UnmarshalVariant(data []byte) (*vcf.Variant, error) {
	var v vcf.Variant
	if err := Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal variant: %w", err)
	}
	return &v, nil
}

// MarshalHeader encodes the records of a header.
func MarshalHeader(h *vcf.Header) ([]byte, error) {
	data, err := Marshal(h.Records())
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}
	return data, nil
}

// UnmarshalHeader decodes header records and rebuilds the registry, so a
// decoded header is validated exactly like a parsed one.
func UnmarshalHeader(data []byte) (*vcf.Header, error) {
	var rec vcf.HeaderRecords
	if err := Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal header: %w", err)
	}
	return vcf.NewHeader(rec)
}
