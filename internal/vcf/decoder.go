package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// infoEnd is the INFO key holding the 1-based inclusive end of a record.
const infoEnd = "END"

// Decoder turns VCF data lines into Variants. It holds no per-line state and
// may be shared by concurrent goroutines.
type Decoder struct {
	header *Header
	opts   ReaderOptions
}

// NewDecoder creates a decoder for lines described by h.
func NewDecoder(h *Header, opts ReaderOptions) *Decoder {
	return &Decoder{header: h, opts: opts}
}

// Header returns the header the decoder interprets lines with.
func (d *Decoder) Header() *Header {
	return d.header
}

// Decode parses one data line into a Variant.
func (d *Decoder) Decode(line string) (*Variant, error) {
	cols := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(cols) < len(FixedColumns) {
		return nil, &MalformedRecordError{
			Message: fmt.Sprintf("expected at least %d columns, found %d", len(FixedColumns), len(cols)),
		}
	}

	nSamples := d.header.NumSamples()
	gotSamples := 0
	if len(cols) > len(FixedColumns)+1 {
		gotSamples = len(cols) - len(FixedColumns) - 1
	}
	if gotSamples != nSamples {
		return nil, &SampleCountMismatchError{Want: nSamples, Got: gotSamples}
	}

	pos, err := strconv.ParseInt(cols[1], 10, 64)
	if err != nil || pos < 0 {
		return nil, &MalformedRecordError{Message: fmt.Sprintf("invalid position: %s", cols[1])}
	}
	if cols[3] == "" {
		return nil, &MalformedRecordError{Message: "empty reference allele"}
	}

	v := &Variant{
		ReferenceName:  cols[0],
		Start:          pos - 1,
		ReferenceBases: cols[3],
		Quality:        QualityMissing,
	}
	v.End = v.Start + int64(len(v.ReferenceBases))

	if cols[2] != MissingValue {
		v.Names = strings.Split(cols[2], ";")
	}
	if cols[4] != MissingValue {
		v.AlternateBases = strings.Split(cols[4], ",")
	}
	if cols[5] != MissingValue {
		q, err := strconv.ParseFloat(cols[5], 64)
		if err != nil {
			return nil, &MalformedRecordError{Message: fmt.Sprintf("invalid quality: %s", cols[5])}
		}
		v.Quality = q
	}
	if err := d.decodeFilters(v, cols[6]); err != nil {
		return nil, err
	}
	if err := d.decodeInfo(v, cols[7]); err != nil {
		return nil, err
	}

	if nSamples > 0 {
		if err := d.decodeCalls(v, cols[8], cols[9:]); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (d *Decoder) decodeFilters(v *Variant, col string) error {
	if col == MissingValue {
		return nil
	}
	v.Filters = strings.Split(col, ";")
	for _, id := range v.Filters {
		if _, ok := d.header.LookupFilter(id); !ok {
			return &UnknownFieldError{Category: CategoryFilter, ID: id}
		}
	}
	return nil
}

func (d *Decoder) decodeInfo(v *Variant, col string) error {
	if col == MissingValue || col == "" {
		return nil
	}
	nAlts := len(v.AlternateBases)
	seen := make(map[string]bool)

	for _, item := range strings.Split(col, ";") {
		if item == "" {
			continue
		}
		key, raw, hasValue := strings.Cut(item, "=")
		if seen[key] {
			return &MalformedRecordError{Message: fmt.Sprintf("duplicate INFO key %s", key)}
		}
		seen[key] = true

		if key == infoEnd && hasValue {
			end, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return &FieldTypeError{ID: infoEnd, Type: TypeInteger, Token: raw}
			}
			v.End = end
		}
		if d.opts.ExcludedInfoFields.Contains(key) {
			continue
		}

		info, ok := d.header.LookupInfo(key)
		if !ok {
			return &UnknownFieldError{Category: CategoryInfo, ID: key}
		}
		f, err := decodeField(info, raw, hasValue, nAlts, defaultPloidy)
		if err != nil {
			return err
		}
		v.Info.put(f)
	}
	return nil
}

func (d *Decoder) decodeCalls(v *Variant, formatCol string, samples []string) error {
	names := d.header.rec.SampleNames
	v.Calls = make([]VariantCall, len(samples))

	// A record without FORMAT keys carries only empty calls.
	if formatCol == MissingValue {
		for i := range samples {
			v.Calls[i] = VariantCall{CallSetName: names[i]}
		}
		return nil
	}

	keys := strings.Split(formatCol, ":")
	infos := make([]FieldInfo, len(keys))
	gtIndex := -1
	seen := make(map[string]bool, len(keys))

	for i, key := range keys {
		if seen[key] {
			return &MalformedRecordError{Message: fmt.Sprintf("duplicate FORMAT key %s", key)}
		}
		seen[key] = true
		if key == GT {
			gtIndex = i
			continue
		}
		if d.opts.ExcludedFormatFields.Contains(key) {
			continue
		}
		info, ok := d.header.LookupFormat(key)
		if !ok {
			return &UnknownFieldError{Category: CategoryFormat, ID: key}
		}
		infos[i] = info
	}

	for i, col := range samples {
		call, err := d.decodeCall(names[i], keys, infos, gtIndex, col, len(v.AlternateBases))
		if err != nil {
			return fmt.Errorf("sample %s: %w", names[i], err)
		}
		v.Calls[i] = call
	}
	return nil
}

func (d *Decoder) decodeCall(name string, keys []string, infos []FieldInfo, gtIndex int, col string, nAlts int) (VariantCall, error) {
	call := VariantCall{CallSetName: name}
	tokens := strings.Split(col, ":")
	if len(tokens) > len(keys) {
		return call, &MalformedRecordError{
			Message: fmt.Sprintf("sample has %d values for %d FORMAT keys", len(tokens), len(keys)),
		}
	}

	// Trailing fields a sample leaves out are missing, exactly as if "."
	// had been written for them.
	token := func(j int) string {
		if j < len(tokens) {
			return tokens[j]
		}
		return MissingValue
	}

	ploidy := defaultPloidy
	if gtIndex >= 0 {
		gt, phased, err := parseGenotype(token(gtIndex), nAlts)
		switch {
		case d.opts.ExcludedFormatFields.Contains(GT):
			if err == nil {
				ploidy = ploidyOf(gt)
			}
		case err != nil:
			return call, err
		default:
			call.Genotype, call.Phased = gt, phased
			ploidy = ploidyOf(gt)
		}
	}

	var gl, pl []float64
	var hasGL, hasPL bool
	for j, key := range keys {
		if key == GT {
			continue
		}
		if d.opts.ExcludedFormatFields.Contains(key) {
			continue
		}

		f, err := decodeField(infos[j], token(j), true, nAlts, ploidy)
		if err != nil {
			return call, err
		}

		if d.opts.Likelihoods == LikelihoodsInCall && isLikelihoodKey(key) {
			vals, ok, err := likelihoodValues(f, infos[j])
			if err != nil {
				return call, err
			}
			if key == GL {
				gl, hasGL = vals, ok
			} else {
				pl, hasPL = vals, ok
			}
			continue
		}
		call.Info.put(f)
	}

	call.GenotypeLikelihood = normalizeLikelihoods(gl, hasGL, pl, hasPL)
	return call, nil
}
