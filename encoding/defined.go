package encoding

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// TypedParser parses the tool output into Go structs.
type TypedParser[T any] struct {
	enc      SchemaEncoder
	name     string
	validate bool
}

// NewTypedParser creates a parser for the type of sourceType,
// in the format specified by mode.
func NewTypedParser[T any](sourceType T, mode Mode) (*TypedParser[T], error) {
	enc, err := Predefined(mode, sourceType)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create encoder")
	}

	return &TypedParser[T]{
		enc:  enc,
		name: fmt.Sprintf("%T parser", sourceType),
	}, nil
}

func (p *TypedParser[T]) WithValidation(validate bool) *TypedParser[T] {
	p.validate = validate
	return p
}

// Parse parses the text into the new instance of T.
func (p *TypedParser[T]) Parse(text string) (*T, error) {
	var target T
	if err := p.enc.Unmarshal([]byte(text), &target); err != nil {
		return nil, errors.Wrap(err, "failed to decode")
	}
	if validator, ok := p.enc.(Validator); ok && p.validate {
		if err := validator.Validate(&target); err != nil {
			return nil, errors.Wrap(err, "failed to validate")
		}
	}
	return &target, nil
}

// GetFormatInstructions returns a string describing the format of the output.
func (p *TypedParser[T]) GetFormatInstructions() string {
	return p.enc.GetFormatInstructions()
}

// Type returns the string type key uniquely identifying this class of parser
func (p *TypedParser[T]) Type() string {
	return p.name
}
