package vcf

import (
	"strconv"
	"strings"
)

// GT is the genotype FORMAT key.
const GT = "GT"

// NoCall is the genotype index of an uncalled allele.
const NoCall = -1

// defaultPloidy is assumed when no genotype says otherwise.
const defaultPloidy = 2

// parseGenotype parses a GT token such as "0/1", "1|0", "./." or "." for a
// record with nAlts alternate alleles. Any '|' separator marks the genotype
// as phased. Empty alleles and indices beyond the last ALT are rejected.
func parseGenotype(tok string, nAlts int) ([]int, bool, error) {
	phased := strings.IndexByte(tok, '|') >= 0
	parts := strings.Split(strings.ReplaceAll(tok, "|", "/"), "/")

	gt := make([]int, len(parts))
	for i, p := range parts {
		if p == MissingValue {
			gt[i] = NoCall
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > nAlts {
			return nil, false, &FieldTypeError{ID: GT, Type: TypeString, Token: tok}
		}
		gt[i] = n
	}
	return gt, phased, nil
}

// checkGenotype reports a *FieldTypeError when gt refers to an allele the
// record does not have.
func checkGenotype(gt []int, phased bool, nAlts int) error {
	for _, a := range gt {
		if a > nAlts || a < NoCall {
			return &FieldTypeError{ID: GT, Type: TypeString, Token: formatGenotype(gt, phased)}
		}
	}
	return nil
}

// formatGenotype is the inverse of parseGenotype.
func formatGenotype(gt []int, phased bool) string {
	if len(gt) == 0 {
		return MissingValue
	}
	sep := byte('/')
	if phased {
		sep = '|'
	}
	var b strings.Builder
	for i, a := range gt {
		if i > 0 {
			b.WriteByte(sep)
		}
		if a < 0 {
			b.WriteString(MissingValue)
		} else {
			b.WriteString(strconv.Itoa(a))
		}
	}
	return b.String()
}

// ploidyOf returns the ploidy used to resolve Number=G for a call. A call
// without a genotype, or with a bare "." genotype, is taken as diploid.
func ploidyOf(gt []int) int {
	if len(gt) == 0 || (len(gt) == 1 && gt[0] == NoCall) {
		return defaultPloidy
	}
	return len(gt)
}
