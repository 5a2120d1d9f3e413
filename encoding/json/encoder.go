package json

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/pkg/schema"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Encoder struct {
	schema *schema.Schema
}

// NewEncoder returns the encoder for the type of req,
// the schema is provided only for struct types.
func NewEncoder(req any) (*Encoder, error) {
	t := reflect.TypeOf(req)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return &Encoder{}, nil
	}
	schema, err := schema.New(t)
	if err != nil {
		return nil, err
	}
	return &Encoder{
		schema: schema,
	}, nil
}

func (e *Encoder) Marshal(req any) ([]byte, error) {
	return json.MarshalIndent(req, "", "\t")
}

// Unmarshal decodes JSON, the text before and after the JSON is ignored,
// and the relaxed syntax is accepted.
func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.CleanJSON(bs)
	if err := json.Unmarshal(data, ret); err == nil {
		return nil
	}
	return ljson.Unmarshal(data, ret)
}

func (e *Encoder) Validate(req any) error {
	return validate.Struct(req)
}

func (e *Encoder) GetFormatInstructions() string {
	if e.schema == nil {
		return ""
	}
	var b bytes.Buffer
	b.WriteString("\nThe output is JSON in the following JSON schema:\n")
	b.WriteString("```json\n")
	b.WriteString(e.schema.String())
	b.WriteString("\n```\n")
	return b.String()
}

func (e *Encoder) Schema() *schema.Schema {
	return e.schema
}
