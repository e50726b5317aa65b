// Package vcf provides VCF header parsing and a typed codec between VCF data
// lines and Variant records.
package vcf

import "slices"

// FilterPass is the FILTER value of a record that failed no filter.
const FilterPass = "PASS"

// QualityMissing is the Quality of a record whose QUAL column is ".".
const QualityMissing = -1.0

// Variant represents a single VCF data line.
type Variant struct {
	ReferenceName  string        `json:"reference_name"`            // Chromosome name (e.g., "12", "chr12")
	Start          int64         `json:"start"`                     // 0-based start
	End            int64         `json:"end"`                       // 0-based exclusive end
	Names          []string      `json:"names,omitempty"`           // ID column entries (e.g., rs IDs)
	ReferenceBases string        `json:"reference_bases"`           // Reference allele
	AlternateBases []string      `json:"alternate_bases,omitempty"` // Alternate alleles in ALT order
	Quality        float64       `json:"quality"`                   // Phred-scaled; QualityMissing when unset
	Filters        []string      `json:"filters,omitempty"`         // PASS or failing filter IDs
	Info           FieldMap      `json:"info,omitempty"`
	Calls          []VariantCall `json:"calls,omitempty"`
}

// VariantCall is the genotype call of one sample at a Variant.
type VariantCall struct {
	CallSetName        string    `json:"call_set_name"`
	Genotype           []int     `json:"genotype,omitempty"` // allele indices; NoCall for "."
	Phased             bool      `json:"phased,omitempty"`
	GenotypeLikelihood []float64 `json:"genotype_likelihood,omitempty"` // log10 scale, VCF GL order
	Info               FieldMap  `json:"info,omitempty"`
}

// Ploidy returns the number of alleles in the call's genotype, or 0 when the
// call has no genotype.
func (c *VariantCall) Ploidy() int {
	return len(c.Genotype)
}

// Pos returns the 1-based VCF position.
func (v *Variant) Pos() int64 {
	return v.Start + 1
}

// NumAlleles returns the number of alleles including the reference.
func (v *Variant) NumAlleles() int {
	return len(v.AlternateBases) + 1
}

// HasQuality reports whether the QUAL column was set.
func (v *Variant) HasQuality() bool {
	return v.Quality != QualityMissing
}

// IsPassing reports whether the variant passed all filters.
func (v *Variant) IsPassing() bool {
	return len(v.Filters) == 1 && v.Filters[0] == FilterPass
}

// IsSNV returns true if the reference and every alternate allele are single bases.
func (v *Variant) IsSNV() bool {
	if len(v.ReferenceBases) != 1 || len(v.AlternateBases) == 0 {
		return false
	}
	for _, alt := range v.AlternateBases {
		if len(alt) != 1 {
			return false
		}
	}
	return true
}

// IsIndel returns true if any alternate allele differs in length from the reference.
func (v *Variant) IsIndel() bool {
	return slices.ContainsFunc(v.AlternateBases, func(alt string) bool {
		return len(alt) != len(v.ReferenceBases)
	})
}

// IsInsertion returns true if any alternate allele is longer than the reference.
func (v *Variant) IsInsertion() bool {
	return slices.ContainsFunc(v.AlternateBases, func(alt string) bool {
		return len(alt) > len(v.ReferenceBases)
	})
}

// IsDeletion returns true if any alternate allele is shorter than the reference.
func (v *Variant) IsDeletion() bool {
	return slices.ContainsFunc(v.AlternateBases, func(alt string) bool {
		return len(alt) < len(v.ReferenceBases)
	})
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.ReferenceName) > 3 && v.ReferenceName[:3] == "chr" {
		return v.ReferenceName[3:]
	}
	return v.ReferenceName
}
