package vcf

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultFileFormat is used when a header has no ##fileformat line.
const DefaultFileFormat = "VCFv4.2"

// FixedColumns are the mandatory column names of the #CHROM line.
var FixedColumns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

// FieldInfo is the schema of an INFO or FORMAT field.
type FieldInfo struct {
	ID          string `json:"id"`
	Number      Number `json:"number"`
	Type        Type   `json:"type"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	Version     string `json:"version,omitempty"`
}

// FilterInfo is a ##FILTER declaration.
type FilterInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ContigInfo is a ##contig declaration. Length is 0 when not declared.
type ContigInfo struct {
	ID     string     `json:"id"`
	Length int64      `json:"length,omitempty"`
	Extra  []KeyValue `json:"extra,omitempty"`
}

// KeyValue is one key=value pair of a header line. Quoted records whether the
// value was written between double quotes.
type KeyValue struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Quoted bool   `json:"quoted,omitempty"`
}

// StructuredExtra is a ##KEY=<...> line of a category the codec does not
// interpret (ALT, SAMPLE, PEDIGREE, META, ...). It is kept verbatim.
type StructuredExtra struct {
	Key    string     `json:"key"`
	Fields []KeyValue `json:"fields"`
}

// HeaderRecords is the plain data of a VCF header.
type HeaderRecords struct {
	FileFormat       string            `json:"fileformat"`
	Contigs          []ContigInfo      `json:"contigs,omitempty"`
	Filters          []FilterInfo      `json:"filters,omitempty"`
	Infos            []FieldInfo       `json:"infos,omitempty"`
	Formats          []FieldInfo       `json:"formats,omitempty"`
	SampleNames      []string          `json:"sample_names,omitempty"`
	StructuredExtras []StructuredExtra `json:"structured_extras,omitempty"`
	Extras           []KeyValue        `json:"extras,omitempty"`
}

// Header is the schema registry built from a VCF header. It is immutable
// after construction and safe for concurrent use.
type Header struct {
	rec HeaderRecords

	infos   map[string]int
	formats map[string]int
	filters map[string]int
	contigs map[string]int
	samples map[string]int
}

// NewHeader validates rec and builds the lookup indexes. It fails with a
// *DuplicateIDError when an ID repeats within a category.
func NewHeader(rec HeaderRecords) (*Header, error) {
	rec = rec.clone()
	if rec.FileFormat == "" {
		rec.FileFormat = DefaultFileFormat
	}

	h := &Header{rec: rec}
	var err error
	if h.infos, err = indexFields(CategoryInfo, rec.Infos); err != nil {
		return nil, err
	}
	if h.formats, err = indexFields(CategoryFormat, rec.Formats); err != nil {
		return nil, err
	}
	if h.filters, err = indexIDs(CategoryFilter, len(rec.Filters), func(i int) string { return rec.Filters[i].ID }); err != nil {
		return nil, err
	}
	if h.contigs, err = indexIDs(CategoryContig, len(rec.Contigs), func(i int) string { return rec.Contigs[i].ID }); err != nil {
		return nil, err
	}
	if h.samples, err = indexIDs(CategorySample, len(rec.SampleNames), func(i int) string { return rec.SampleNames[i] }); err != nil {
		return nil, err
	}
	return h, nil
}

func indexFields(category string, fields []FieldInfo) (map[string]int, error) {
	for _, f := range fields {
		if f.Type == TypeFlag && category == CategoryFormat {
			return nil, fmt.Errorf("%s field %s: Flag is only valid for INFO fields", category, f.ID)
		}
		if f.Type == TypeFlag && f.Number != NumberZero {
			return nil, fmt.Errorf("%s field %s: Flag requires Number=0, found %s", category, f.ID, f.Number)
		}
	}
	return indexIDs(category, len(fields), func(i int) string { return fields[i].ID })
}

func indexIDs(category string, n int, id func(int) string) (map[string]int, error) {
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		key := id(i)
		if key == "" {
			return nil, fmt.Errorf("%s entry %d has no ID", category, i)
		}
		if _, dup := idx[key]; dup {
			return nil, &DuplicateIDError{Category: category, ID: key}
		}
		idx[key] = i
	}
	return idx, nil
}

// LookupInfo returns the schema of an INFO field.
func (h *Header) LookupInfo(id string) (FieldInfo, bool) {
	i, ok := h.infos[id]
	if !ok {
		return FieldInfo{}, false
	}
	return h.rec.Infos[i], true
}

// LookupFormat returns the schema of a FORMAT field.
func (h *Header) LookupFormat(id string) (FieldInfo, bool) {
	i, ok := h.formats[id]
	if !ok {
		return FieldInfo{}, false
	}
	return h.rec.Formats[i], true
}

// LookupFilter returns a declared filter. PASS is always known.
func (h *Header) LookupFilter(id string) (FilterInfo, bool) {
	i, ok := h.filters[id]
	if !ok {
		if id == FilterPass {
			return FilterInfo{ID: FilterPass, Description: "All filters passed"}, true
		}
		return FilterInfo{}, false
	}
	return h.rec.Filters[i], true
}

// LookupContig returns a declared contig.
func (h *Header) LookupContig(id string) (ContigInfo, bool) {
	i, ok := h.contigs[id]
	if !ok {
		return ContigInfo{}, false
	}
	return h.rec.Contigs[i], true
}

// SampleIndex returns the column index of a sample among the sample columns.
func (h *Header) SampleIndex(name string) (int, bool) {
	i, ok := h.samples[name]
	return i, ok
}

// formatOrder returns the declaration index of a FORMAT field, or -1.
func (h *Header) formatOrder(id string) int {
	if i, ok := h.formats[id]; ok {
		return i
	}
	return -1
}

// SampleNames returns the sample names in column order.
func (h *Header) SampleNames() []string {
	return slices.Clone(h.rec.SampleNames)
}

// NumSamples returns the number of declared samples.
func (h *Header) NumSamples() int {
	return len(h.rec.SampleNames)
}

// FileFormat returns the ##fileformat value.
func (h *Header) FileFormat() string {
	return h.rec.FileFormat
}

// Records returns a copy of the header data.
func (h *Header) Records() HeaderRecords {
	return h.rec.clone()
}

func (r HeaderRecords) clone() HeaderRecords {
	out := r
	if r.Contigs != nil {
		out.Contigs = make([]ContigInfo, len(r.Contigs))
		for i, c := range r.Contigs {
			c.Extra = slices.Clone(c.Extra)
			out.Contigs[i] = c
		}
	}
	out.Filters = slices.Clone(r.Filters)
	out.Infos = slices.Clone(r.Infos)
	out.Formats = slices.Clone(r.Formats)
	out.SampleNames = slices.Clone(r.SampleNames)
	if r.StructuredExtras != nil {
		out.StructuredExtras = make([]StructuredExtra, len(r.StructuredExtras))
		for i, e := range r.StructuredExtras {
			e.Fields = slices.Clone(e.Fields)
			out.StructuredExtras[i] = e
		}
	}
	out.Extras = slices.Clone(r.Extras)
	return out
}

// ParseHeader builds a Header from the ## meta-information lines and the
// #CHROM line of a VCF file.
func ParseHeader(lines []string) (*Header, error) {
	var rec HeaderRecords
	sawColumns := false

	for i, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "#CHROM"):
			names, err := parseColumnLine(line)
			if err != nil {
				return nil, fmt.Errorf("header line %d: %w", i+1, err)
			}
			rec.SampleNames = names
			sawColumns = true
		case strings.HasPrefix(line, "##"):
			if err := rec.addMetaLine(line[2:]); err != nil {
				return nil, fmt.Errorf("header line %d: %w", i+1, err)
			}
		case line == "":
			continue
		default:
			return nil, fmt.Errorf("header line %d: unexpected line %q", i+1, line)
		}
	}

	if !sawColumns {
		return nil, fmt.Errorf("no #CHROM header line found")
	}
	return NewHeader(rec)
}

func parseColumnLine(line string) ([]string, error) {
	cols := strings.Split(line[1:], "\t")
	if len(cols) < len(FixedColumns) {
		return nil, fmt.Errorf("#CHROM line has %d columns, expected at least %d", len(cols), len(FixedColumns))
	}
	for i, name := range FixedColumns {
		if cols[i] != name {
			return nil, fmt.Errorf("#CHROM line column %d is %q, expected %q", i+1, cols[i], name)
		}
	}
	if len(cols) == len(FixedColumns) {
		return nil, nil
	}
	if cols[8] != "FORMAT" {
		return nil, fmt.Errorf("#CHROM line column 9 is %q, expected \"FORMAT\"", cols[8])
	}
	return slices.Clone(cols[9:]), nil
}

func (r *HeaderRecords) addMetaLine(body string) error {
	key, value, ok := strings.Cut(body, "=")
	if !ok {
		return fmt.Errorf("meta-information line without '=': %q", body)
	}
	if key == "fileformat" {
		r.FileFormat = value
		return nil
	}
	if !strings.HasPrefix(value, "<") || !strings.HasSuffix(value, ">") {
		r.Extras = append(r.Extras, KeyValue{Key: key, Value: value})
		return nil
	}

	fields, err := parseStructured(value[1 : len(value)-1])
	if err != nil {
		return fmt.Errorf("##%s: %w", key, err)
	}

	switch key {
	case CategoryInfo, CategoryFormat:
		f, err := fieldInfoFrom(fields)
		if err != nil {
			return fmt.Errorf("##%s: %w", key, err)
		}
		if key == CategoryInfo {
			r.Infos = append(r.Infos, f)
		} else {
			r.Formats = append(r.Formats, f)
		}
	case CategoryFilter:
		id, _ := lookupKV(fields, "ID")
		desc, _ := lookupKV(fields, "Description")
		r.Filters = append(r.Filters, FilterInfo{ID: id, Description: desc})
	case CategoryContig:
		c := ContigInfo{}
		for _, kv := range fields {
			switch kv.Key {
			case "ID":
				c.ID = kv.Value
			case "length":
				n, err := strconv.ParseInt(kv.Value, 10, 64)
				if err != nil {
					return fmt.Errorf("##contig: invalid length %q", kv.Value)
				}
				c.Length = n
			default:
				c.Extra = append(c.Extra, kv)
			}
		}
		r.Contigs = append(r.Contigs, c)
	default:
		r.StructuredExtras = append(r.StructuredExtras, StructuredExtra{Key: key, Fields: fields})
	}
	return nil
}

func fieldInfoFrom(fields []KeyValue) (FieldInfo, error) {
	var f FieldInfo
	var number, typ string
	for _, kv := range fields {
		switch kv.Key {
		case "ID":
			f.ID = kv.Value
		case "Number":
			number = kv.Value
		case "Type":
			typ = kv.Value
		case "Description":
			f.Description = kv.Value
		case "Source":
			f.Source = kv.Value
		case "Version":
			f.Version = kv.Value
		}
	}
	var err error
	if f.Type, err = ParseType(typ); err != nil {
		return f, fmt.Errorf("field %s: %w", f.ID, err)
	}
	if f.Number, err = ParseNumber(number); err != nil {
		return f, fmt.Errorf("field %s: %w", f.ID, err)
	}
	return f, nil
}

func lookupKV(fields []KeyValue, key string) (string, bool) {
	for _, kv := range fields {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// parseStructured splits the inside of <...> into key=value pairs, honoring
// double-quoted values with backslash escapes.
func parseStructured(s string) ([]KeyValue, error) {
	var out []KeyValue
	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("expected key=value in %q", s)
		}
		kv := KeyValue{Key: s[:eq]}
		s = s[eq+1:]

		if strings.HasPrefix(s, `"`) {
			var b strings.Builder
			i := 1
			for ; i < len(s); i++ {
				c := s[i]
				if c == '\\' && i+1 < len(s) {
					i++
					b.WriteByte(s[i])
					continue
				}
				if c == '"' {
					break
				}
				b.WriteByte(c)
			}
			if i >= len(s) {
				return nil, fmt.Errorf("unterminated quoted value for %s", kv.Key)
			}
			kv.Value = b.String()
			kv.Quoted = true
			s = s[i+1:]
		} else {
			end := strings.IndexByte(s, ',')
			if end < 0 {
				end = len(s)
			}
			kv.Value = s[:end]
			s = s[end:]
		}
		out = append(out, kv)

		if len(s) > 0 {
			if s[0] != ',' {
				return nil, fmt.Errorf("expected ',' after %s", kv.Key)
			}
			s = s[1:]
		}
	}
	return out, nil
}

// Lines regenerates the header text, ending with the #CHROM line.
func (h *Header) Lines() []string {
	r := &h.rec
	lines := []string{"##fileformat=" + r.FileFormat}

	for _, f := range r.Filters {
		lines = append(lines, "##FILTER=<"+formatKVs([]KeyValue{
			{Key: "ID", Value: f.ID},
			{Key: "Description", Value: f.Description, Quoted: true},
		})+">")
	}
	for _, f := range r.Infos {
		lines = append(lines, "##INFO=<"+formatKVs(f.keyValues())+">")
	}
	for _, f := range r.Formats {
		lines = append(lines, "##FORMAT=<"+formatKVs(f.keyValues())+">")
	}
	for _, c := range r.Contigs {
		kvs := []KeyValue{{Key: "ID", Value: c.ID}}
		if c.Length > 0 {
			kvs = append(kvs, KeyValue{Key: "length", Value: strconv.FormatInt(c.Length, 10)})
		}
		kvs = append(kvs, c.Extra...)
		lines = append(lines, "##contig=<"+formatKVs(kvs)+">")
	}
	for _, e := range r.StructuredExtras {
		lines = append(lines, "##"+e.Key+"=<"+formatKVs(e.Fields)+">")
	}
	for _, e := range r.Extras {
		lines = append(lines, "##"+e.Key+"="+e.Value)
	}

	cols := "#" + strings.Join(FixedColumns, "\t")
	if len(r.SampleNames) > 0 {
		cols += "\tFORMAT\t" + strings.Join(r.SampleNames, "\t")
	}
	return append(lines, cols)
}

func (f FieldInfo) keyValues() []KeyValue {
	kvs := []KeyValue{
		{Key: "ID", Value: f.ID},
		{Key: "Number", Value: f.Number.String()},
		{Key: "Type", Value: f.Type.String()},
		{Key: "Description", Value: f.Description, Quoted: true},
	}
	if f.Source != "" {
		kvs = append(kvs, KeyValue{Key: "Source", Value: f.Source, Quoted: true})
	}
	if f.Version != "" {
		kvs = append(kvs, KeyValue{Key: "Version", Value: f.Version, Quoted: true})
	}
	return kvs
}

func formatKVs(kvs []KeyValue) string {
	var b strings.Builder
	for i, kv := range kvs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(kv.Key)
		b.WriteByte('=')
		if kv.Quoted {
			b.WriteByte('"')
			for j := 0; j < len(kv.Value); j++ {
				if c := kv.Value[j]; c == '"' || c == '\\' {
					b.WriteByte('\\')
				}
				b.WriteByte(kv.Value[j])
			}
			b.WriteByte('"')
		} else {
			b.WriteString(kv.Value)
		}
	}
	return b.String()
}
