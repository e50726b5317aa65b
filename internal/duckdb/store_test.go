package duckdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-vcf/internal/vcf"
)

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testHeader(t *testing.T) *vcf.Header {
	t.Helper()
	h, err := vcf.NewHeader(vcf.HeaderRecords{
		Filters: []vcf.FilterInfo{{ID: "q10", Description: "Quality below 10"}},
		Infos: []vcf.FieldInfo{
			{ID: "DP", Number: vcf.NumberOne, Type: vcf.TypeInteger, Description: "Total Depth"},
		},
		Formats: []vcf.FieldInfo{
			{ID: "GT", Number: vcf.NumberOne, Type: vcf.TypeString, Description: "Genotype"},
			{ID: "GL", Number: vcf.NumberPerGeno, Type: vcf.TypeFloat, Description: "Genotype likelihoods"},
		},
		SampleNames: []string{"S1"},
	})
	require.NoError(t, err)
	return h
}

func testVariant(chrom string, pos int64, ref, alt string) *vcf.Variant {
	v := &vcf.Variant{
		ReferenceName:  chrom,
		Start:          pos - 1,
		End:            pos - 1 + int64(len(ref)),
		ReferenceBases: ref,
		AlternateBases: []string{alt},
		Quality:        vcf.QualityMissing,
		Filters:        []string{vcf.FilterPass},
		Calls: []vcf.VariantCall{{
			CallSetName:        "S1",
			Genotype:           []int{0, 1},
			GenotypeLikelihood: []float64{-3, 0, -3},
		}},
	}
	v.Info.Set("DP", vcf.Int(pos%50))
	return v
}

func TestOpenClose(t *testing.T) {
	s := openInMemory(t)
	assert.NotNil(t, s.DB())
}

func TestOpen_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "variants.duckdb")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestWriteAndQueryRegion(t *testing.T) {
	s := openInMemory(t)

	deletion := testVariant("20", 300, "GTC", "G")
	deletion.Quality = 29
	variants := []*vcf.Variant{
		testVariant("20", 100, "A", "T"),
		testVariant("20", 200, "C", "G"),
		deletion,
		testVariant("21", 100, "A", "C"),
	}
	require.NoError(t, s.WriteVariants(variants))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	// chr20:150-301 overlaps positions 200 and the deletion starting at 300.
	got, err := s.QueryRegion("20", 149, 301)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, variants[1], got[0])
	assert.Equal(t, deletion, got[1])

	// The deletion spans 300-302, so a query at 302 still overlaps it.
	got, err = s.QueryRegion("20", 301, 302)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(300), got[0].Pos())

	got, err = s.QueryRegion("21", 0, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "21", got[0].ReferenceName)

	got, err = s.QueryRegion("22", 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteVariants_Empty(t *testing.T) {
	s := openInMemory(t)
	require.NoError(t, s.WriteVariants(nil))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestWriteVariants_SiteColumns(t *testing.T) {
	s := openInMemory(t)

	v := testVariant("20", 100, "A", "T")
	v.AlternateBases = []string{"T", "C"}
	v.Filters = []string{"q10"}
	v.Quality = 12.5
	missing := testVariant("20", 200, "C", "G")
	require.NoError(t, s.WriteVariants([]*vcf.Variant{v, missing}))

	rows, err := s.DB().Query("SELECT chrom, start_pos, end_pos, ref, alts, qual, filters FROM variants ORDER BY start_pos")
	require.NoError(t, err)
	defer rows.Close()

	type site struct {
		chrom, ref, alts, filters string
		start, end                int64
		qual                      *float64
	}
	var sites []site
	for rows.Next() {
		var st site
		require.NoError(t, rows.Scan(&st.chrom, &st.start, &st.end, &st.ref, &st.alts, &st.qual, &st.filters))
		sites = append(sites, st)
	}
	require.NoError(t, rows.Err())
	require.Len(t, sites, 2)

	assert.Equal(t, "T,C", sites[0].alts)
	assert.Equal(t, "q10", sites[0].filters)
	require.NotNil(t, sites[0].qual)
	assert.Equal(t, 12.5, *sites[0].qual)
	assert.Equal(t, int64(99), sites[0].start)
	assert.Equal(t, int64(100), sites[0].end)
	assert.Nil(t, sites[1].qual)
}

func TestHeader(t *testing.T) {
	s := openInMemory(t)

	h, err := s.LoadHeader()
	require.NoError(t, err)
	assert.Nil(t, h)

	want := testHeader(t)
	require.NoError(t, s.SaveHeader(want))
	require.NoError(t, s.SaveHeader(want))

	got, err := s.LoadHeader()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Records(), got.Records())

	var n int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM vcf_header").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStoredRecordsReencode(t *testing.T) {
	s := openInMemory(t)
	h := testHeader(t)
	require.NoError(t, s.SaveHeader(h))

	v := testVariant("20", 100, "A", "T")
	require.NoError(t, s.WriteVariants([]*vcf.Variant{v}))

	stored, err := s.LoadHeader()
	require.NoError(t, err)
	got, err := s.QueryRegion("20", 0, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)

	line, err := vcf.NewEncoder(stored, vcf.WriterOptions{}).Encode(got[0])
	require.NoError(t, err)
	assert.Equal(t, "20\t100\t.\tA\tT\t.\tPASS\tDP=0\tGT:GL\t0/1:-3,0,-3", line)
}

func TestClearVariants(t *testing.T) {
	s := openInMemory(t)

	require.NoError(t, s.WriteVariants([]*vcf.Variant{testVariant("1", 100, "A", "T")}))
	require.NoError(t, s.SaveHeader(testHeader(t)))
	require.NoError(t, s.SaveSource(FileFingerprint{Path: "a.vcf", Size: 1, ModTime: time.Unix(1, 0)}, 1))

	require.NoError(t, s.ClearVariants())

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	h, err := s.LoadHeader()
	require.NoError(t, err)
	assert.Nil(t, h)
	loaded, _, err := s.SourceLoaded(FileFingerprint{Path: "a.vcf", Size: 1, ModTime: time.Unix(1, 0)})
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestSources(t *testing.T) {
	s := openInMemory(t)

	path := filepath.Join(t.TempDir(), "input.vcf")
	require.NoError(t, os.WriteFile(path, []byte("##fileformat=VCFv4.2\n"), 0o644))
	fp, err := StatFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(21), fp.Size)

	loaded, _, err := s.SourceLoaded(fp)
	require.NoError(t, err)
	assert.False(t, loaded)

	require.NoError(t, s.SaveSource(fp, 42))
	loaded, n, err := s.SourceLoaded(fp)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, int64(42), n)

	changed := fp
	changed.ModTime = fp.ModTime.Add(time.Second)
	loaded, n, err = s.SourceLoaded(changed)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Equal(t, int64(42), n)

	require.NoError(t, s.SaveSource(changed, 7))
	loaded, n, err = s.SourceLoaded(changed)
	require.NoError(t, err)
	assert.True(t, loaded)
	assert.Equal(t, int64(7), n)
}

func TestStatFile_Missing(t *testing.T) {
	_, err := StatFile(filepath.Join(t.TempDir(), "missing.vcf"))
	assert.Error(t, err)
}
