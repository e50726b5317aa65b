package vcf

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// row joins columns with tabs.
func row(cols ...string) string {
	return strings.Join(cols, "\t")
}

func TestDecode_Sites(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "14370", "rs6054257", "G", "A", "29", "PASS", "DP=14;AF=0.5;DB",
		"GT:GQ", "0|0:48", "1|0:43"))
	require.NoError(t, err)

	assert.Equal(t, "20", v.ReferenceName)
	assert.Equal(t, int64(14369), v.Start)
	assert.Equal(t, int64(14370), v.End)
	assert.Equal(t, int64(14370), v.Pos())
	assert.Equal(t, []string{"rs6054257"}, v.Names)
	assert.Equal(t, "G", v.ReferenceBases)
	assert.Equal(t, []string{"A"}, v.AlternateBases)
	assert.Equal(t, 29.0, v.Quality)
	assert.Equal(t, []string{"PASS"}, v.Filters)
	assert.True(t, v.IsPassing())

	assert.Equal(t, []string{"DP", "AF", "DB"}, v.Info.Keys())
	dp, _ := v.Info.Get("DP")
	assert.Equal(t, []Value{Int(14)}, dp.Values)
	af, _ := v.Info.Get("AF")
	assert.Equal(t, []Value{Float(0.5)}, af.Values)
	db, _ := v.Info.Get("DB")
	assert.Empty(t, db.Values)
}

func TestDecode_MissingColumns(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "1230237", ".", "T", ".", ".", ".", ".", "GT", "0|0", "./."))
	require.NoError(t, err)

	assert.Nil(t, v.Names)
	assert.Nil(t, v.AlternateBases)
	assert.Equal(t, QualityMissing, v.Quality)
	assert.False(t, v.HasQuality())
	assert.Nil(t, v.Filters)
	assert.Empty(t, v.Info)
	assert.Equal(t, []int{NoCall, NoCall}, v.Calls[1].Genotype)
}

func TestDecode_QualZeroIsNotMissing(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "100", ".", "A", "T", "0", ".", ".", "GT", "0/1", "0/0"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, v.Quality)
	assert.True(t, v.HasQuality())
}

func TestDecode_End(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "1234567", "microsat1", "GTC", "G,GTCT", ".", ".", "DP=9;END=1234570", "GT", "0/1", "0/2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1234566), v.Start)
	assert.Equal(t, int64(1234570), v.End)
	assert.True(t, v.Info.Has("END"))

	// END still sets the record end when the field itself is dropped.
	d = NewDecoder(testHeader(t), ReaderOptions{ExcludedInfoFields: NewFieldSet("END")})
	v, err = d.Decode(row("20", "1234567", "microsat1", "GTC", "G,GTCT", ".", ".", "DP=9;END=1234570", "GT", "0/1", "0/2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1234570), v.End)
	assert.False(t, v.Info.Has("END"))
}

func TestDecode_Calls(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "1110696", "rs6040355", "A", "G,T", "67", "PASS", "AF=0.333,0.667",
		"GT:AD:GQ", "1|2:1,5,6:21", "2/2:0,0,9:35"))
	require.NoError(t, err)
	require.Len(t, v.Calls, 2)

	c := v.Calls[0]
	assert.Equal(t, "S1", c.CallSetName)
	assert.Equal(t, []int{1, 2}, c.Genotype)
	assert.True(t, c.Phased)
	assert.Equal(t, []string{"AD", "GQ"}, c.Info.Keys())
	ad, _ := c.Info.Get("AD")
	assert.Equal(t, []Value{Int(1), Int(5), Int(6)}, ad.Values)

	c = v.Calls[1]
	assert.Equal(t, "S2", c.CallSetName)
	assert.Equal(t, []int{2, 2}, c.Genotype)
	assert.False(t, c.Phased)
}

func TestDecode_PLNormalizedToLog10(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", "0/1:30,0,30", "0/0:0,30,300"))
	require.NoError(t, err)

	assert.Equal(t, []float64{-3, 0, -3}, v.Calls[0].GenotypeLikelihood)
	assert.Equal(t, []float64{0, -3, -30}, v.Calls[1].GenotypeLikelihood)
	assert.False(t, v.Calls[0].Info.Has(PL))
}

func TestDecode_GLWinsOverPL(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL:GL",
		"0/1:1,0,20:-0.12,0,-2.5", "0/0:0,30,300:0,-3.1,-30.2"))
	require.NoError(t, err)

	assert.Equal(t, []float64{-0.12, 0, -2.5}, v.Calls[0].GenotypeLikelihood)
	assert.Equal(t, []float64{0, -3.1, -30.2}, v.Calls[1].GenotypeLikelihood)
	assert.Empty(t, v.Calls[0].Info)
}

func TestDecode_LikelihoodsInInfoMap(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{Likelihoods: LikelihoodsInInfoMap})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL:GL",
		"0/1:1,0,20:-0.12,0,-2.5", "0/0:.:."))
	require.NoError(t, err)

	c := v.Calls[0]
	assert.Nil(t, c.GenotypeLikelihood)
	assert.Equal(t, []string{PL, GL}, c.Info.Keys())
	pl, _ := c.Info.Get(PL)
	assert.Equal(t, []Value{Int(1), Int(0), Int(20)}, pl.Values)

	c = v.Calls[1]
	gl, ok := c.Info.Get(GL)
	require.True(t, ok)
	assert.True(t, gl.Unset)
}

func TestDecode_LikelihoodWithMissingElement(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	_, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", "0/1:30,.,30", "0/0:0,30,300"))
	var typeErr *FieldTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, PL, typeErr.ID)

	d = NewDecoder(testHeader(t), ReaderOptions{Likelihoods: LikelihoodsInInfoMap})
	_, err = d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", "0/1:30,.,30", "0/0:0,30,300"))
	assert.NoError(t, err)
}

func TestDecode_PloidyFromGenotype(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	// Haploid call: Number=G resolves to 2 values for a biallelic site.
	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", "1:30,0", "0/1:30,0,30"))
	require.NoError(t, err)
	assert.Equal(t, []float64{-3, 0}, v.Calls[0].GenotypeLikelihood)
	assert.Equal(t, 1, v.Calls[0].Ploidy())

	// A bare "." genotype is taken as diploid.
	_, err = d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", ".:30,0,30", "0/1:30,0,30"))
	assert.NoError(t, err)

	_, err = d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", "1:30,0,30", "0/1:30,0,30"))
	var arityErr *FieldArityError
	assert.True(t, errors.As(err, &arityErr))
}

func TestDecode_TrailingFieldsDropped(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:GQ:DP", "0/1:35:4", "0/0"))
	require.NoError(t, err)
	assert.Equal(t, []string{"GQ", "DP"}, v.Calls[0].Info.Keys())
	assert.Equal(t, []int{0, 0}, v.Calls[1].Genotype)

	// Dropped fields decode the same as an explicit ".".
	explicit, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:GQ:DP", "0/1:35:4", "0/0:.:."))
	require.NoError(t, err)
	assert.Equal(t, explicit, v)
	gq, ok := v.Calls[1].Info.Get("GQ")
	require.True(t, ok)
	assert.True(t, gq.Unset)

	// A dropped GT is an uncalled genotype of unknown ploidy.
	v, err = d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "DP:GT:PL", "5:0/1:30,0,30", "3"))
	require.NoError(t, err)
	assert.Equal(t, []int{NoCall}, v.Calls[1].Genotype)
	assert.Nil(t, v.Calls[1].GenotypeLikelihood)
}

func TestDecode_RecordRoundTrip(t *testing.T) {
	lines := []string{
		row("20", "100", ".", "A", "T", ".", ".", ".", "GT:DP", "0/1:5", "0/0"),
		row("20", "100", ".", "A", "T", ".", ".", ".", "DP:GT", "5:0/1", "3"),
		row("20", "100", ".", "A", "T", ".", ".", ".", "GT:GQ:PL", "0/1:35:30,0,30", "."),
		row("20", "100", ".", "A", "G,T", "3", "q10", "AF=0.1,.;CSQ", "GT:AD:GL", "1|2:1,.,6", "./.:.:0,-1,-2,-3,-4,-5"),
		row("20", "100", ".", "A", ".", ".", ".", "DP=.", "GT:DP", "0", "."),
	}

	h := testHeader(t)
	for _, opts := range []ReaderOptions{{}, {Likelihoods: LikelihoodsInInfoMap}} {
		d := NewDecoder(h, opts)
		e := NewEncoder(h, opts.WriterOptions())
		for _, line := range lines {
			t.Run(opts.Likelihoods.String()+"/"+line, func(t *testing.T) {
				first, err := d.Decode(line)
				require.NoError(t, err)
				text, err := e.Encode(first)
				require.NoError(t, err)
				second, err := d.Decode(text)
				require.NoError(t, err)
				assert.Equal(t, first, second, "re-encoded as %q", text)
			})
		}
	}
}

func TestDecode_NoFormatKeys(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", ".", ".", "."))
	require.NoError(t, err)
	require.Len(t, v.Calls, 2)
	assert.Equal(t, VariantCall{CallSetName: "S1"}, v.Calls[0])
	assert.Equal(t, VariantCall{CallSetName: "S2"}, v.Calls[1])
}

func TestDecode_Exclusions(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{
		ExcludedInfoFields:   NewFieldSet("AF", "NOT_DECLARED"),
		ExcludedFormatFields: NewFieldSet("GQ", "XX"),
	})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", "DP=3;AF=bad,value;NOT_DECLARED=1",
		"GT:GQ:XX", "0/1:35:z", "0/0:1:z"))
	require.NoError(t, err)

	assert.Equal(t, []string{"DP"}, v.Info.Keys())
	assert.Empty(t, v.Calls[0].Info)
	assert.Equal(t, []int{0, 1}, v.Calls[0].Genotype)
}

func TestDecode_ExcludeGenotype(t *testing.T) {
	d := NewDecoder(testHeader(t), ReaderOptions{ExcludedFormatFields: NewFieldSet(GT)})

	v, err := d.Decode(row("20", "100", ".", "A", "T", ".", ".", ".", "GT:GQ", "0/1:35", "0/0:1"))
	require.NoError(t, err)
	assert.Nil(t, v.Calls[0].Genotype)
	assert.Equal(t, []string{"GQ"}, v.Calls[0].Info.Keys())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		check func(t *testing.T, err error)
	}{
		{
			name: "too few columns",
			line: row("20", "100", ".", "A"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "bad position",
			line: row("20", "abc", ".", "A", "T", ".", ".", ".", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "bad quality",
			line: row("20", "100", ".", "A", "T", "high", ".", ".", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "missing sample column",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT", "0/1"),
			check: func(t *testing.T, err error) {
				var e *SampleCountMismatchError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 2, e.Want)
				assert.Equal(t, 1, e.Got)
			},
		},
		{
			name: "extra sample column",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT", "0/1", "0/1", "1/1"),
			check: func(t *testing.T, err error) {
				var e *SampleCountMismatchError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 3, e.Got)
			},
		},
		{
			name: "sites only line for samples",
			line: row("20", "100", ".", "A", "T", ".", ".", "."),
			check: func(t *testing.T, err error) {
				var e *SampleCountMismatchError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 0, e.Got)
			},
		},
		{
			name: "unknown INFO",
			line: row("20", "100", ".", "A", "T", ".", ".", "XYZ=1", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *UnknownFieldError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, CategoryInfo, e.Category)
				assert.Equal(t, "XYZ", e.ID)
			},
		},
		{
			name: "unknown FORMAT",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT:XX", "0/1:1", "0/1:1"),
			check: func(t *testing.T, err error) {
				var e *UnknownFieldError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, CategoryFormat, e.Category)
			},
		},
		{
			name: "unknown FILTER",
			line: row("20", "100", ".", "A", "T", ".", "s50", ".", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *UnknownFieldError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, CategoryFilter, e.Category)
			},
		},
		{
			name: "INFO arity",
			line: row("20", "100", ".", "A", "T,C", ".", ".", "AF=0.5", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *FieldArityError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 2, e.Want)
				assert.Equal(t, 1, e.Got)
			},
		},
		{
			name: "INFO type",
			line: row("20", "100", ".", "A", "T", ".", ".", "DP=many", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *FieldTypeError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "flag with value",
			line: row("20", "100", ".", "A", "T", ".", ".", "DB=1", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *FieldArityError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "more sample values than keys",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT:GQ", "0/1:3:4", "0/1"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				require.True(t, errors.As(err, &e))
				assert.Contains(t, err.Error(), "sample S1")
			},
		},
		{
			name: "duplicate FORMAT key",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT:GQ:GQ", "0/1:3:4", "0/1:3:4"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "duplicate INFO key",
			line: row("20", "100", ".", "A", "T", ".", ".", "DP=3;DP=4", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				require.True(t, errors.As(err, &e))
				assert.Contains(t, err.Error(), "DP")
			},
		},
		{
			name: "duplicate INFO flag",
			line: row("20", "100", ".", "A", "T", ".", ".", "DB;DP=3;DB", "GT", "0/1", "0/1"),
			check: func(t *testing.T, err error) {
				var e *MalformedRecordError
				assert.True(t, errors.As(err, &e))
			},
		},
		{
			name: "empty allele in genotype",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT:PL", "0//1:0,10,20", "0/1:0,10,20"),
			check: func(t *testing.T, err error) {
				var e *FieldTypeError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, GT, e.ID)
				assert.Equal(t, "0//1", e.Token)
			},
		},
		{
			name: "genotype allele beyond ALT",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT", "0/5", "0/1"),
			check: func(t *testing.T, err error) {
				var e *FieldTypeError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, GT, e.ID)
			},
		},
		{
			name: "bad genotype",
			line: row("20", "100", ".", "A", "T", ".", ".", ".", "GT", "A/T", "0/1"),
			check: func(t *testing.T, err error) {
				var e *FieldTypeError
				require.True(t, errors.As(err, &e))
				assert.Equal(t, GT, e.ID)
			},
		},
	}

	d := NewDecoder(testHeader(t), ReaderOptions{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := d.Decode(tt.line)
			require.Error(t, err)
			assert.Nil(t, v)
			tt.check(t, err)
		})
	}
}

func TestDecode_SitesOnlyHeader(t *testing.T) {
	h, err := ParseHeader(append(append([]string{}, testHeaderLines[:len(testHeaderLines)-1]...),
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"))
	require.NoError(t, err)
	d := NewDecoder(h, ReaderOptions{})

	v, err := d.Decode(row("20", "100", ".", "A", "T", "10", "PASS", "DP=3"))
	require.NoError(t, err)
	assert.Nil(t, v.Calls)

	_, err = d.Decode(row("20", "100", ".", "A", "T", "10", "PASS", "DP=3", "GT", "0/1"))
	var e *SampleCountMismatchError
	assert.True(t, errors.As(err, &e))
}
