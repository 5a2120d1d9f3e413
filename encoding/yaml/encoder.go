package yaml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/pkg/llmutils"
	"github.com/effective-security/nutritionai/pkg/schema"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type CommentStyle int

const (
	NoComment CommentStyle = iota
	HeadComment
	LineComment
	FootComment
)

type Encoder struct {
	reqType      reflect.Type
	commentStyle CommentStyle
}

func NewEncoder(req any) *Encoder {
	return &Encoder{
		reqType:      reflect.TypeOf(req),
		commentStyle: NoComment,
	}
}

// Marshal encodes the value, if the comment style is set
// the field comments are taken from `comment` tag, or jsonschema description.
func (e *Encoder) Marshal(v any) ([]byte, error) {
	if e.commentStyle == NoComment {
		return yaml.Marshal(v)
	}
	node, err := e.valueNode(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	data := llmutils.BytesTrimBackticks(bs)
	return yaml.Unmarshal(data, ret)
}

func (e *Encoder) Validate(req any) error {
	return validate.Struct(req)
}

func (e *Encoder) WithCommentStyle(style CommentStyle) *Encoder {
	e.commentStyle = style
	return e
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
	b.WriteString("\nThe output is YAML in the following format:\n")
	b.WriteString("```yaml\n")
	b.Write(bs)
	b.WriteString("```\n")
	return b.String()
}

var nullNode = &yaml.Node{Kind: yaml.ScalarNode, Value: "null", Tag: "!!null"}

var jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()

func (e *Encoder) valueNode(v reflect.Value) (*yaml.Node, error) {
	for v.IsValid() {
		if v.Kind() != reflect.Interface && v.CanInterface() && v.Type().Implements(jsonMarshalerType) {
			if v.Kind() == reflect.Ptr && v.IsNil() {
				return nullNode, nil
			}
			return jsonNode(v.Interface().(json.Marshaler))
		}
		if v.Kind() != reflect.Ptr && v.Kind() != reflect.Interface {
			break
		}
		if v.IsNil() {
			return nullNode, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nullNode, nil
	}

	switch v.Kind() {
	case reflect.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.String(), Tag: "!!str"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatInt(v.Int(), 10), Tag: "!!int"}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatUint(v.Uint(), 10), Tag: "!!int"}, nil
	case reflect.Float32, reflect.Float64:
		// untagged, the integral values are resolved as int
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(v.Float(), 'f', -1, 64)}, nil
	case reflect.Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(v.Bool()), Tag: "!!bool"}, nil
	case reflect.Struct:
		return e.structNode(v)
	case reflect.Map:
		return e.mapNode(v)
	case reflect.Slice, reflect.Array:
		return e.sliceNode(v)
	}
	// fallback to the default encoding
	node := new(yaml.Node)
	if err := node.Encode(v.Interface()); err != nil {
		return nil, errors.WithStack(err)
	}
	return node, nil
}

func (e *Encoder) structNode(val reflect.Value) (*yaml.Node, error) {
	typ := val.Type()
	root := &yaml.Node{Kind: yaml.MappingNode}

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		name, omitEmpty := fieldName(field)
		if name == "-" {
			continue
		}
		fv := val.Field(i)
		if omitEmpty && isEmptyValue(fv) {
			continue
		}

		comment := field.Tag.Get("comment")
		if comment == "" {
			comment = extractDescription(field.Tag.Get("jsonschema"))
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: name}
		if comment != "" {
			switch e.commentStyle {
			case HeadComment:
				keyNode.HeadComment = comment
			case LineComment:
				keyNode.LineComment = comment
			case FootComment:
				keyNode.FootComment = comment
			}
		}

		valueNode, err := e.valueNode(fv)
		if err != nil {
			return nil, errors.WithMessagef(err, "field %s", field.Name)
		}
		root.Content = append(root.Content, keyNode, valueNode)
	}

	return root, nil
}

func (e *Encoder) mapNode(v reflect.Value) (*yaml.Node, error) {
	keys := v.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
	})

	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range keys {
		valueNode, err := e.valueNode(v.MapIndex(key))
		if err != nil {
			return nil, err
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(key.Interface())}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

func (e *Encoder) sliceNode(v reflect.Value) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	for i := 0; i < v.Len(); i++ {
		item, err := e.valueNode(v.Index(i))
		if err != nil {
			return nil, err
		}
		node.Content = append(node.Content, item)
	}
	return node, nil
}

// jsonNode converts the custom JSON encoding to YAML node
func jsonNode(m json.Marshaler) (*yaml.Node, error) {
	js, err := m.MarshalJSON()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var doc yaml.Node
	if err = yaml.Unmarshal(js, &doc); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(doc.Content) == 0 {
		return nullNode, nil
	}
	node := doc.Content[0]
	blockStyle(node)
	return node, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return v.IsZero()
}

// fieldName returns the name from `yaml` or `json` tag,
// or the field name if not specified.
func fieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("yaml")
	if !ok {
		tag, ok = field.Tag.Lookup("json")
	}
	if !ok {
		return field.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = field.Name
	}
	return name, strings.Contains(opts, "omitempty")
}

var reDescription = regexp.MustCompile(`description=([^,]+)`)

// Parse description from jsonschema
func extractDescription(tag string) string {
	matches := reDescription.FindStringSubmatch(tag)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}
