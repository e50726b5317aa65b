package vcf

import (
	"fmt"
	"strconv"
)

// MissingValue is the VCF missing-value token.
const MissingValue = "."

// Type is the declared Type of an INFO or FORMAT field.
type Type uint8

const (
	TypeString Type = iota
	TypeInteger
	TypeFloat
	TypeFlag
	TypeCharacter
)

var typeNames = [...]string{"String", "Integer", "Float", "Flag", "Character"}

// ParseType parses the Type attribute of an INFO or FORMAT header line.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if s == name {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("invalid Type %q", s)
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", t)
}

// ValueKind tags the representation held by a Value.
type ValueKind uint8

const (
	KindMissing ValueKind = iota // "." element inside a list
	KindInteger
	KindFloat
	KindCharacter
	KindString
)

// Value is one typed element of an INFO or FORMAT field.
type Value struct {
	Kind  ValueKind `json:"kind"`
	Int   int64     `json:"int,omitempty"`
	Float float64   `json:"float,omitempty"`
	Str   string    `json:"str,omitempty"`
}

// Value constructors.
func Int(i int64) Value     { return Value{Kind: KindInteger, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Char(c string) Value   { return Value{Kind: KindCharacter, Str: c} }
func Str(s string) Value    { return Value{Kind: KindString, Str: s} }
func Missing() Value        { return Value{Kind: KindMissing} }

// String returns the VCF text of the value.
func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return formatFloat(v.Float)
	case KindCharacter, KindString:
		return v.Str
	}
	return MissingValue
}

// AsFloat returns the numeric value of an Integer or Float value.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindInteger:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	}
	return 0, false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// parseValue converts one raw token to the declared type.
func parseValue(id string, t Type, tok string) (Value, error) {
	if tok == MissingValue {
		return Missing(), nil
	}
	switch t {
	case TypeInteger:
		i, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return Value{}, &FieldTypeError{ID: id, Type: t, Token: tok}
		}
		return Int(i), nil
	case TypeFloat:
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Value{}, &FieldTypeError{ID: id, Type: t, Token: tok}
		}
		return Float(f), nil
	case TypeCharacter:
		if len([]rune(tok)) != 1 {
			return Value{}, &FieldTypeError{ID: id, Type: t, Token: tok}
		}
		return Char(tok), nil
	case TypeString:
		return Str(tok), nil
	}
	return Value{}, &FieldTypeError{ID: id, Type: t, Token: tok}
}

// compatible reports whether v may be written as a value of type t.
func (v Value) compatible(t Type) bool {
	switch v.Kind {
	case KindMissing:
		return true
	case KindInteger:
		return t == TypeInteger || t == TypeFloat
	case KindFloat:
		return t == TypeFloat
	case KindCharacter:
		return t == TypeCharacter || t == TypeString
	case KindString:
		return t == TypeString || (t == TypeCharacter && len([]rune(v.Str)) == 1)
	}
	return false
}

// Field is one INFO or FORMAT entry. Unset marks a field given as the bare
// missing token; it is distinct from an empty list, which is how a present
// Flag field is represented.
type Field struct {
	ID     string  `json:"id"`
	Values []Value `json:"values,omitempty"`
	Unset  bool    `json:"unset,omitempty"`
}

// FieldMap is an ordered association list of fields keyed by ID. Insertion
// order is kept so records re-encode stably.
type FieldMap []Field

// Get returns the field with the given ID.
func (m FieldMap) Get(id string) (Field, bool) {
	for _, f := range m {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Has reports whether a field with the given ID is present.
func (m FieldMap) Has(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// Set replaces the values of an existing field or appends a new one.
func (m *FieldMap) Set(id string, values ...Value) {
	m.put(Field{ID: id, Values: values})
}

// SetFlag marks a Flag field as present.
func (m *FieldMap) SetFlag(id string) {
	m.put(Field{ID: id})
}

// SetUnset records a field whose value is the missing token.
func (m *FieldMap) SetUnset(id string) {
	m.put(Field{ID: id, Unset: true})
}

func (m *FieldMap) put(f Field) {
	for i := range *m {
		if (*m)[i].ID == f.ID {
			(*m)[i] = f
			return
		}
	}
	*m = append(*m, f)
}

// Delete removes the field with the given ID, keeping the order of the rest.
func (m *FieldMap) Delete(id string) {
	for i := range *m {
		if (*m)[i].ID == id {
			*m = append((*m)[:i], (*m)[i+1:]...)
			return
		}
	}
}

// Keys returns the field IDs in order.
func (m FieldMap) Keys() []string {
	keys := make([]string, len(m))
	for i, f := range m {
		keys[i] = f.ID
	}
	return keys
}
