// Package text provides the plain text encoder,
// values implementing fmt.Stringer are printed as is.
package text

import (
	"encoding"
	"encoding/json"
	"fmt"
)

type Encoder struct{}

func NewEncoder() *Encoder {
	return new(Encoder)
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	switch s := v.(type) {
	case fmt.Stringer:
		return []byte(s.String()), nil
	case string:
		return []byte(s), nil
	case []byte:
		return s, nil
	case *string:
		return []byte(*s), nil
	case *[]byte:
		return *s, nil
	}
	return json.MarshalIndent(v, "", "\t")
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	switch s := ret.(type) {
	case encoding.TextUnmarshaler:
		return s.UnmarshalText(bs)
	case *string:
		*s = string(bs)
		return nil
	case *[]byte:
		*s = bs
		return nil
	}
	return json.Unmarshal(bs, ret)
}

func (e *Encoder) GetFormatInstructions() string {
	return ""
}
