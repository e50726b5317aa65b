package vcf

import (
	"strings"
)

// decodeField converts the raw text of an INFO or FORMAT value into a typed
// Field. hasValue is false for an INFO key written without '='.
func decodeField(info FieldInfo, raw string, hasValue bool, nAlts, ploidy int) (Field, error) {
	f := Field{ID: info.ID}

	if info.Type == TypeFlag {
		if hasValue {
			return f, &FieldArityError{ID: info.ID, Number: info.Number, Want: 0, Got: len(strings.Split(raw, ","))}
		}
		return f, nil
	}

	if !hasValue {
		if want, ok := info.Number.Count(nAlts, ploidy); ok && want != 0 {
			return f, &FieldArityError{ID: info.ID, Number: info.Number, Want: want, Got: 0}
		}
		return f, nil
	}

	if raw == "" || raw == MissingValue {
		f.Unset = true
		return f, nil
	}

	tokens := strings.Split(raw, ",")
	if want, ok := info.Number.Count(nAlts, ploidy); ok && want != len(tokens) {
		return f, &FieldArityError{ID: info.ID, Number: info.Number, Want: want, Got: len(tokens)}
	}

	f.Values = make([]Value, len(tokens))
	for i, tok := range tokens {
		v, err := parseValue(info.ID, info.Type, tok)
		if err != nil {
			return f, err
		}
		f.Values[i] = v
	}
	return f, nil
}

// encodeField renders the values of f as VCF text checked against its schema.
// The result is empty for a Flag and for a variable-length field with no values.
func encodeField(info FieldInfo, f Field, nAlts, ploidy int) (string, error) {
	if info.Type == TypeFlag {
		if len(f.Values) > 0 || f.Unset {
			return "", &FieldArityError{ID: info.ID, Number: info.Number, Want: 0, Got: len(f.Values)}
		}
		return "", nil
	}
	if f.Unset {
		return MissingValue, nil
	}

	if want, ok := info.Number.Count(nAlts, ploidy); ok && want != len(f.Values) {
		return "", &FieldArityError{ID: info.ID, Number: info.Number, Want: want, Got: len(f.Values)}
	}

	var b strings.Builder
	for i, v := range f.Values {
		if !v.compatible(info.Type) {
			return "", &FieldTypeError{ID: info.ID, Type: info.Type, Token: v.String()}
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(v.String())
	}
	return b.String(), nil
}
