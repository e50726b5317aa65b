package vcf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Encoder renders Variants as VCF data lines. It holds no per-record state
// and may be shared by concurrent goroutines.
type Encoder struct {
	header *Header
	opts   WriterOptions
}

// NewEncoder creates an encoder for records described by h.
func NewEncoder(h *Header, opts WriterOptions) *Encoder {
	return &Encoder{header: h, opts: opts}
}

// Header returns the header records are encoded against.
func (e *Encoder) Header() *Header {
	return e.header
}

// Encode renders v as one VCF data line without a trailing newline.
func (e *Encoder) Encode(v *Variant) (string, error) {
	if err := e.checkCalls(v); err != nil {
		return "", err
	}

	var lb strings.Builder
	lb.Grow(256)

	lb.WriteString(v.ReferenceName)
	lb.WriteByte('\t')
	lb.WriteString(strconv.FormatInt(v.Start+1, 10))
	lb.WriteByte('\t')
	writeList(&lb, v.Names, ";")
	lb.WriteByte('\t')
	lb.WriteString(v.ReferenceBases)
	lb.WriteByte('\t')
	writeList(&lb, v.AlternateBases, ",")
	lb.WriteByte('\t')
	lb.WriteString(e.formatQual(v.Quality))
	lb.WriteByte('\t')
	for _, id := range v.Filters {
		if _, ok := e.header.LookupFilter(id); !ok {
			return "", &UnknownFieldError{Category: CategoryFilter, ID: id}
		}
	}
	writeList(&lb, v.Filters, ";")
	lb.WriteByte('\t')
	if err := e.writeInfo(&lb, v); err != nil {
		return "", err
	}

	if e.header.NumSamples() > 0 {
		if err := e.writeCalls(&lb, v); err != nil {
			return "", err
		}
	}
	return lb.String(), nil
}

func writeList(b *strings.Builder, items []string, sep string) {
	if len(items) == 0 {
		b.WriteString(MissingValue)
		return
	}
	b.WriteString(strings.Join(items, sep))
}

func (e *Encoder) formatQual(q float64) string {
	if q == QualityMissing {
		return MissingValue
	}
	if e.opts.RoundQualValues {
		return strconv.FormatFloat(q, 'f', 1, 64)
	}
	return formatFloat(q)
}

func (e *Encoder) checkCalls(v *Variant) error {
	names := e.header.rec.SampleNames
	if len(v.Calls) != len(names) {
		return &SampleCountMismatchError{Want: len(names), Got: len(v.Calls)}
	}
	for i := range v.Calls {
		if v.Calls[i].CallSetName != names[i] {
			return &SampleNameMismatchError{Index: i, Want: names[i], Got: v.Calls[i].CallSetName}
		}
	}
	return nil
}

func (e *Encoder) writeInfo(b *strings.Builder, v *Variant) error {
	nAlts := len(v.AlternateBases)
	written := 0
	for _, f := range v.Info {
		if e.opts.ExcludedInfoFields.Contains(f.ID) {
			continue
		}
		info, ok := e.header.LookupInfo(f.ID)
		if !ok {
			return &UnknownFieldError{Category: CategoryInfo, ID: f.ID}
		}
		text, err := encodeField(info, f, nAlts, defaultPloidy)
		if err != nil {
			return err
		}
		if written > 0 {
			b.WriteByte(';')
		}
		b.WriteString(f.ID)
		if text != "" {
			b.WriteByte('=')
			b.WriteString(text)
		}
		written++
	}
	if written == 0 {
		b.WriteString(MissingValue)
	}
	return nil
}

// formatKeys returns the FORMAT keys of v: GT first, then every other key
// present in any call, in header declaration order. likKey is the key that
// carries structured likelihoods, or "" when none is written.
func (e *Encoder) formatKeys(v *Variant) (keys []string, likKey string, err error) {
	excluded := e.opts.ExcludedFormatFields
	hasGT, hasLik := false, false
	present := make(map[string]bool)

	for i := range v.Calls {
		c := &v.Calls[i]
		if len(c.Genotype) > 0 {
			hasGT = true
		}
		switch e.opts.Likelihoods {
		case LikelihoodsInCall:
			if c.Info.Has(GL) || c.Info.Has(PL) {
				return nil, "", &LikelihoodConflictError{CallSetName: c.CallSetName, Storage: e.opts.Likelihoods}
			}
			if len(c.GenotypeLikelihood) > 0 {
				hasLik = true
			}
		case LikelihoodsInInfoMap:
			if len(c.GenotypeLikelihood) > 0 {
				return nil, "", &LikelihoodConflictError{CallSetName: c.CallSetName, Storage: e.opts.Likelihoods}
			}
		}
		for _, f := range c.Info {
			if f.ID == GT {
				return nil, "", &MalformedRecordError{Message: fmt.Sprintf("call %s: GT stored in call info", c.CallSetName)}
			}
			if !excluded.Contains(f.ID) {
				present[f.ID] = true
			}
		}
	}

	if hasLik {
		if likKey, err = e.likelihoodKey(); err != nil {
			return nil, "", err
		}
		if !excluded.Contains(likKey) {
			present[likKey] = true
		} else {
			likKey = ""
		}
	}

	others := make([]string, 0, len(present))
	for id := range present {
		if _, ok := e.header.LookupFormat(id); !ok {
			return nil, "", &UnknownFieldError{Category: CategoryFormat, ID: id}
		}
		others = append(others, id)
	}
	slices.SortFunc(others, func(a, b string) int {
		return e.header.formatOrder(a) - e.header.formatOrder(b)
	})

	if hasGT && !excluded.Contains(GT) {
		keys = append(keys, GT)
	}
	return append(keys, others...), likKey, nil
}

// likelihoodKey picks the FORMAT key structured likelihoods are written to:
// GL when declared, else PL converted back to Phred scale.
func (e *Encoder) likelihoodKey() (string, error) {
	if info, ok := e.header.LookupFormat(GL); ok {
		if info.Type != TypeFloat || info.Number != NumberPerGeno {
			return "", fmt.Errorf("FORMAT GL declared as Number=%s,Type=%s, expected Number=G,Type=Float", info.Number, info.Type)
		}
		return GL, nil
	}
	if info, ok := e.header.LookupFormat(PL); ok {
		if info.Type != TypeInteger || info.Number != NumberPerGeno {
			return "", fmt.Errorf("FORMAT PL declared as Number=%s,Type=%s, expected Number=G,Type=Integer", info.Number, info.Type)
		}
		return PL, nil
	}
	return "", &UnknownFieldError{Category: CategoryFormat, ID: GL}
}

func (e *Encoder) writeCalls(b *strings.Builder, v *Variant) error {
	keys, likKey, err := e.formatKeys(v)
	if err != nil {
		return err
	}

	b.WriteByte('\t')
	if len(keys) == 0 {
		b.WriteString(MissingValue)
		for range v.Calls {
			b.WriteByte('\t')
			b.WriteString(MissingValue)
		}
		return nil
	}
	b.WriteString(strings.Join(keys, ":"))

	nAlts := len(v.AlternateBases)
	for i := range v.Calls {
		c := &v.Calls[i]
		ploidy := ploidyOf(c.Genotype)
		b.WriteByte('\t')
		for j, key := range keys {
			if j > 0 {
				b.WriteByte(':')
			}
			text, err := e.callValue(c, key, likKey, nAlts, ploidy)
			if err != nil {
				return fmt.Errorf("sample %s: %w", c.CallSetName, err)
			}
			b.WriteString(text)
		}
	}
	return nil
}

func (e *Encoder) callValue(c *VariantCall, key, likKey string, nAlts, ploidy int) (string, error) {
	if key == GT {
		if err := checkGenotype(c.Genotype, c.Phased, nAlts); err != nil {
			return "", err
		}
		return formatGenotype(c.Genotype, c.Phased), nil
	}
	if key == likKey {
		return formatLikelihoods(key, c.GenotypeLikelihood, nAlts, ploidy)
	}

	f, ok := c.Info.Get(key)
	if !ok {
		return MissingValue, nil
	}
	info, _ := e.header.LookupFormat(key)
	text, err := encodeField(info, f, nAlts, ploidy)
	if err != nil {
		return "", err
	}
	if text == "" {
		return MissingValue, nil
	}
	return text, nil
}

func formatLikelihoods(key string, gl []float64, nAlts, ploidy int) (string, error) {
	if len(gl) == 0 {
		return MissingValue, nil
	}
	if want := NumGenotypes(nAlts+1, ploidy); want != len(gl) {
		return "", &FieldArityError{ID: key, Number: NumberPerGeno, Want: want, Got: len(gl)}
	}
	parts := make([]string, len(gl))
	if key == PL {
		for i, p := range Log10ToPhred(gl) {
			parts[i] = strconv.FormatInt(p, 10)
		}
	} else {
		for i, x := range gl {
			parts[i] = formatFloat(x)
		}
	}
	return strings.Join(parts, ","), nil
}
