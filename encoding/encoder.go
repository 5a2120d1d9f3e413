// Package encoding provides the encoders for the tool input and output,
// and the format instructions describing the expected shape.
package encoding

import (
	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/nutritionai/encoding/json"
	textenc "github.com/effective-security/nutritionai/encoding/text"
	tomlenc "github.com/effective-security/nutritionai/encoding/toml"
	yamlenc "github.com/effective-security/nutritionai/encoding/yaml"
)

type SchemaEncoder interface {
	Marshal(req any) ([]byte, error)
	Unmarshal([]byte, any) error
	// GetFormatInstructions returns the message with the example or schema of the type
	GetFormatInstructions() string
}

type Validator interface {
	Validate(any) error
}

type Mode = string

const (
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
	ModeTOML Mode = "toml"
	ModeText Mode = "text"
)

// ModeDefault is the default mode for the encoder.
// Allow to override in apps
var ModeDefault = ModeText

// Modes returns the supported modes
func Modes() []Mode {
	return []Mode{ModeText, ModeJSON, ModeYAML, ModeTOML}
}

// Predefined returns the encoder for the mode,
// req is an instance of the type to be encoded.
func Predefined(mode Mode, req any) (SchemaEncoder, error) {
	var (
		enc SchemaEncoder
		err error
	)
	switch mode {
	case ModeJSON:
		enc, err = jsonenc.NewEncoder(req)
	case ModeYAML:
		enc = yamlenc.NewEncoder(req).WithCommentStyle(yamlenc.LineComment)
	case ModeTOML:
		enc = tomlenc.NewEncoder(req)
	case ModeText:
		enc = textenc.NewEncoder()
	default:
		return nil, errors.Errorf("no predefined encoder: %q", mode)
	}
	return enc, err
}

var (
	_ SchemaEncoder = (*textenc.Encoder)(nil)
	_ SchemaEncoder = (*jsonenc.Encoder)(nil)
	_ SchemaEncoder = (*tomlenc.Encoder)(nil)
	_ SchemaEncoder = (*yamlenc.Encoder)(nil)

	_ Validator = (*jsonenc.Encoder)(nil)
	_ Validator = (*tomlenc.Encoder)(nil)
	_ Validator = (*yamlenc.Encoder)(nil)
)
