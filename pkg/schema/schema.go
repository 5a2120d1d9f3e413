package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Faker is a interface for generating structures
// with fake data. It is used for generating test data.
type Faker interface {
	Fake() any
}

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

type Schema struct {
	RawSchema *jsonschema.Schema
	// Parameters represents the Function parameters definition
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given type
func New(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, errors.New("schema: nil type")
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Errorf("schema: expected struct, got %s", t.Kind())
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}
	cache[t] = s

	return s, nil
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

func buildSchema(t reflect.Type) (*Schema, error) {
	schema := jsonSchema(t)

	funcDef, err := toFunctionSchema(schema)
	if err != nil {
		return nil, errors.WithMessagef(err, "schema: %s", t.Name())
	}
	s := &Schema{
		RawSchema:  schema,
		Parameters: funcDef,
	}

	return s, nil
}

// toFunctionSchema returns the top level object schema,
// with all references resolved from definitions.
func toFunctionSchema(tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	// find top level properties
	refID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	var defs = make(map[string]*jsonschema.Schema)
	root := tSchema

	for name, def := range tSchema.Definitions {
		if name == refID {
			root = def
		} else {
			defs[name] = def
		}
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}

	if res.Properties != nil {
		if err := resolveRefs(res.Properties, defs); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Ref != "" {
			name := strings.TrimPrefix(pair.Value.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Errorf("definition not found: %s", name)
			}
			pair.Value = def
		}
		child := pair.Value
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Errorf("definition not found: %s", name)
			}
			child.Items = def
		}
	}
	return nil
}

// jsonSchema returns the json schema of the type
func jsonSchema(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.ExpandedStruct = true
	r.DoNotReference = true
	r.AllowAdditionalProperties = true

	// The Struct name could be same, but the package name is different,
	// for example every tool has `SearchRequest`.
	// The package path hash is added to the struct name to keep `$ref` unique.
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}

	return r.ReflectFromType(t)
}
