package vcf

import (
	"fmt"
	"strconv"
)

// NumberKind is the cardinality rule of an INFO or FORMAT field.
type NumberKind uint8

const (
	NumberFixed     NumberKind = iota // literal integer count
	NumberA                           // one value per alternate allele
	NumberR                           // one value per allele, reference included
	NumberG                           // one value per possible genotype
	NumberUnbounded                   // "." : count varies or is unknown
)

// Number is the declared Number of a header field.
type Number struct {
	Kind NumberKind `json:"kind"`
	N    int        `json:"n,omitempty"` // count for NumberFixed
}

// Commonly used Number values.
var (
	NumberZero      = Number{Kind: NumberFixed, N: 0}
	NumberOne       = Number{Kind: NumberFixed, N: 1}
	NumberPerAlt    = Number{Kind: NumberA}
	NumberPerAllele = Number{Kind: NumberR}
	NumberPerGeno   = Number{Kind: NumberG}
	NumberVariable  = Number{Kind: NumberUnbounded}
)

// ParseNumber parses the Number attribute of an INFO or FORMAT header line.
func ParseNumber(s string) (Number, error) {
	switch s {
	case "A":
		return NumberPerAlt, nil
	case "R":
		return NumberPerAllele, nil
	case "G":
		return NumberPerGeno, nil
	case ".":
		return NumberVariable, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Number{}, fmt.Errorf("invalid Number %q", s)
	}
	return Number{Kind: NumberFixed, N: n}, nil
}

func (n Number) String() string {
	switch n.Kind {
	case NumberA:
		return "A"
	case NumberR:
		return "R"
	case NumberG:
		return "G"
	case NumberUnbounded:
		return "."
	}
	return strconv.Itoa(n.N)
}

// Count resolves the rule to a concrete number of values for a record with
// nAlts alternate alleles and a genotype of the given ploidy. ok is false for
// NumberUnbounded, where any count is accepted.
func (n Number) Count(nAlts, ploidy int) (count int, ok bool) {
	switch n.Kind {
	case NumberA:
		return nAlts, true
	case NumberR:
		return nAlts + 1, true
	case NumberG:
		return NumGenotypes(nAlts+1, ploidy), true
	case NumberUnbounded:
		return 0, false
	}
	return n.N, true
}

// NumGenotypes returns the number of unordered genotypes of the given ploidy
// over nAlleles alleles: C(nAlleles+ploidy-1, ploidy).
func NumGenotypes(nAlleles, ploidy int) int {
	if nAlleles <= 0 || ploidy < 0 {
		return 0
	}
	// Each partial result is itself a binomial coefficient, so the division is exact.
	result := 1
	for i := 1; i <= ploidy; i++ {
		result = result * (nAlleles + i - 1) / i
	}
	return result
}
