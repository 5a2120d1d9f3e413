package toml

import (
	"bytes"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/pkg/schema"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Encoder struct {
	reqType reflect.Type
}

func NewEncoder(req any) *Encoder {
	return &Encoder{
		reqType: reflect.TypeOf(req),
	}
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.BytesTrimBackticks(bs)
	return toml.Unmarshal(data, ret)
}

func (e *Encoder) Validate(req any) error {
	return validate.Struct(req)
}

func (e *Encoder) GetFormatInstructions() string {
	if e.reqType == nil {
		return ""
	}
	t := e.reqType
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	tValue := reflect.New(t)
	instance := tValue.Interface()
	if f, ok := tValue.Elem().Interface().(schema.Faker); ok {
		instance = f.Fake()
	} else {
		_ = gofakeit.Struct(instance)
	}
	bs, err := e.Marshal(instance)
	if err != nil {
		return ""
	}
	var b bytes.Buffer
	b.WriteString("\nThe output is TOML in the following format:\n")
	b.WriteString("```toml\n")
	b.Write(bs)
	b.WriteString("```\n")
	return b.String()
}
