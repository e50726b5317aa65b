package vcf

// FieldSet is a set of INFO or FORMAT field IDs. A nil FieldSet is empty.
type FieldSet map[string]struct{}

// NewFieldSet returns a set holding ids.
func NewFieldSet(ids ...string) FieldSet {
	s := make(FieldSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s FieldSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// ReaderOptions configures a Decoder.
type ReaderOptions struct {
	// ExcludedInfoFields are dropped from Variant.Info without validation.
	ExcludedInfoFields FieldSet
	// ExcludedFormatFields are dropped from every call.
	ExcludedFormatFields FieldSet
	// Likelihoods selects where GL and PL are stored. LikelihoodsInInfoMap
	// keeps them in VariantCall.Info.
	Likelihoods LikelihoodStorage
}

// WriterOptions configures an Encoder.
type WriterOptions struct {
	// ExcludedInfoFields are omitted from the INFO column.
	ExcludedInfoFields FieldSet
	// ExcludedFormatFields are omitted from the FORMAT and sample columns.
	ExcludedFormatFields FieldSet
	// RoundQualValues writes QUAL with one decimal place.
	RoundQualValues bool
	// Likelihoods selects where GL and PL are read from. LikelihoodsInInfoMap
	// takes them verbatim from VariantCall.Info.
	Likelihoods LikelihoodStorage
}

// WriterOptions returns the writer options that re-encode records decoded
// with o without further loss.
func (o ReaderOptions) WriterOptions() WriterOptions {
	return WriterOptions{
		ExcludedInfoFields:   o.ExcludedInfoFields,
		ExcludedFormatFields: o.ExcludedFormatFields,
		Likelihoods:          o.Likelihoods,
	}
}
