package vcf

import "math"

// Genotype likelihood FORMAT keys.
const (
	GL = "GL" // log10-scaled likelihoods, Type=Float, Number=G
	PL = "PL" // Phred-scaled likelihoods, Type=Integer, Number=G
)

// LikelihoodStorage selects where a call's genotype likelihoods live.
type LikelihoodStorage uint8

const (
	// LikelihoodsInCall stores GL/PL in VariantCall.GenotypeLikelihood as
	// log10 values. When both are present GL wins and PL is dropped: PL is a
	// lower-resolution copy of the same information.
	LikelihoodsInCall LikelihoodStorage = iota
	// LikelihoodsInInfoMap keeps GL and PL as ordinary typed entries of
	// VariantCall.Info and leaves GenotypeLikelihood empty.
	LikelihoodsInInfoMap
)

func (s LikelihoodStorage) String() string {
	if s == LikelihoodsInInfoMap {
		return "info-map"
	}
	return "call"
}

// PhredToLog10 converts Phred-scaled likelihoods to log10 scale: GL = -PL/10.
func PhredToLog10(pl []float64) []float64 {
	gl := make([]float64, len(pl))
	for i, v := range pl {
		if v != 0 {
			gl[i] = -v / 10.0
		}
	}
	return gl
}

// Log10ToPhred converts log10 likelihoods to rounded Phred scale: PL = round(-10*GL).
func Log10ToPhred(gl []float64) []int64 {
	pl := make([]int64, len(gl))
	for i, v := range gl {
		pl[i] = int64(math.Round(-10 * v))
	}
	return pl
}

// isLikelihoodKey reports whether a FORMAT key is handled by the likelihood
// normalizer under LikelihoodsInCall.
func isLikelihoodKey(id string) bool {
	return id == GL || id == PL
}

// likelihoodValues extracts numeric values from a decoded GL or PL field.
// An unset field counts as absent; a missing element inside the list cannot
// be represented in the structured field and is rejected.
func likelihoodValues(f Field, info FieldInfo) ([]float64, bool, error) {
	if f.Unset {
		return nil, false, nil
	}
	out := make([]float64, len(f.Values))
	for i, v := range f.Values {
		x, ok := v.AsFloat()
		if !ok {
			return nil, false, &FieldTypeError{ID: f.ID, Type: info.Type, Token: v.String()}
		}
		out[i] = x
	}
	return out, true, nil
}

// normalizeLikelihoods applies the GL/PL precedence policy.
func normalizeLikelihoods(gl []float64, hasGL bool, pl []float64, hasPL bool) []float64 {
	switch {
	case hasGL:
		return gl
	case hasPL:
		return PhredToLog10(pl)
	}
	return nil
}
