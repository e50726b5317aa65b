package vcf

import "fmt"

// Header categories used in DuplicateIDError.
const (
	CategoryInfo   = "INFO"
	CategoryFormat = "FORMAT"
	CategoryFilter = "FILTER"
	CategoryContig = "contig"
	CategorySample = "sample"
)

// DuplicateIDError is returned when a header declares the same ID twice
// within one category.
type DuplicateIDError struct {
	Category string
	ID       string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s ID %q in header", e.Category, e.ID)
}

// UnknownFieldError is returned when a record references an INFO, FORMAT or
// FILTER ID that the header does not declare.
type UnknownFieldError struct {
	Category string
	ID       string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s field %q not declared in header", e.Category, e.ID)
}

// FieldArityError is returned when the number of values of a field does not
// match its Number rule.
type FieldArityError struct {
	ID     string
	Number Number
	Want   int
	Got    int
}

func (e *FieldArityError) Error() string {
	return fmt.Sprintf("field %s (Number=%s): expected %d values, found %d", e.ID, e.Number, e.Want, e.Got)
}

// FieldTypeError is returned when a value cannot be converted to, or is not
// compatible with, the declared field type.
type FieldTypeError struct {
	ID    string
	Type  Type
	Token string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %s (Type=%s): invalid value %q", e.ID, e.Type, e.Token)
}

// MalformedRecordError is returned when a data line violates the VCF column
// structure.
type MalformedRecordError struct {
	Message string
}

func (e *MalformedRecordError) Error() string {
	return "malformed record: " + e.Message
}

// SampleCountMismatchError is returned when the number of sample columns or
// calls differs from the number of samples declared in the header.
type SampleCountMismatchError struct {
	Want int
	Got  int
}

func (e *SampleCountMismatchError) Error() string {
	return fmt.Sprintf("expected %d samples, found %d", e.Want, e.Got)
}

// SampleNameMismatchError is returned when calls are not in header sample order.
type SampleNameMismatchError struct {
	Index int
	Want  string
	Got   string
}

func (e *SampleNameMismatchError) Error() string {
	return fmt.Sprintf("call %d: expected sample %q, found %q", e.Index, e.Want, e.Got)
}

// LikelihoodConflictError is returned when a call carries genotype likelihoods
// in the representation that the configured LikelihoodStorage does not use.
type LikelihoodConflictError struct {
	CallSetName string
	Storage     LikelihoodStorage
}

func (e *LikelihoodConflictError) Error() string {
	return fmt.Sprintf("call %s: genotype likelihoods conflict with %s storage", e.CallSetName, e.Storage)
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vcf parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
