package tools

import (
	"context"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/chatmodel"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/pkg/schema"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RunFunc is the typed implementation of a tool function.
type RunFunc[I any, O any] func(context.Context, *I) (*O, error)

// Func is a tool backed by a typed function,
// the parameters schema is generated from the input type.
type Func[I any, O any] struct {
	name        string
	description string
	funcParams  any
	run         RunFunc[I, O]
}

// ensure Func implements the Tool interface
var _ Tool[struct{}, struct{}] = (*Func[struct{}, struct{}])(nil)

// NewFunc returns a tool with the given name and description,
// the name must be unique within a spec.
func NewFunc[I any, O any](name, description string, run RunFunc[I, O]) (*Func[I, O], error) {
	if name == "" {
		return nil, errors.New("tool name is required")
	}
	if run == nil {
		return nil, errors.Errorf("tool %s: function is required", name)
	}

	var def I
	sc, err := schema.New(reflect.TypeOf(def))
	if err != nil {
		return nil, errors.Wrapf(err, "tool %s: failed to create schema", name)
	}
	return &Func[I, O]{
		name:        name,
		description: description,
		funcParams:  sc.Parameters,
		run:         run,
	}, nil
}

// WithDescription sets the description of the tool, to be used in the prompt.
func (t *Func[I, O]) WithDescription(description string) *Func[I, O] {
	t.description = description
	return t
}

func (t *Func[I, O]) Name() string {
	return t.name
}

func (t *Func[I, O]) Description() string {
	return t.description
}

func (t *Func[I, O]) Parameters() any {
	return t.funcParams
}

// Run validates the input and executes the function.
func (t *Func[I, O]) Run(ctx context.Context, req *I) (*O, error) {
	if req == nil {
		return nil, errors.New("invalid request: nil input")
	}
	if reflect.ValueOf(req).Elem().Kind() == reflect.Struct {
		if err := validate.StructCtx(ctx, req); err != nil {
			return nil, errors.Wrap(err, "invalid request")
		}
	}
	return t.run(ctx, req)
}

// Call parses the JSON input, and returns the content of the result.
func (t *Func[I, O]) Call(ctx context.Context, input string) (string, error) {
	var req I
	if err := llmutils.UnmarshalInput(input, &req); err != nil {
		return "", err
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return chatmodel.Content(out)
}
