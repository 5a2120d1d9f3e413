package encoding_test

import (
	"testing"

	"github.com/effective-security/nutritionai/encoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Food struct {
	Name     string   `json:"name" yaml:"name" toml:"name" validate:"required" jsonschema:"title=Name,description=Food name" fake:"apple"`
	Calories float64  `json:"calories" yaml:"calories" toml:"calories" jsonschema:"title=Calories,description=Calories per portion" fake:"52"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" jsonschema:"title=Tags,description=Tags" fake:"skip"`
}

func (f Food) String() string {
	return "FOOD: " + f.Name
}

func Test_Predefined(t *testing.T) {
	for _, mode := range encoding.Modes() {
		e, err := encoding.Predefined(mode, Food{})
		require.NoError(t, err, mode)
		assert.NotNil(t, e)
	}

	_, err := encoding.Predefined("xml", Food{})
	assert.EqualError(t, err, `no predefined encoder: "xml"`)
}

func Test_Encoding_Marshal(t *testing.T) {
	food := &Food{Name: "apple", Calories: 52}

	tcases := []struct {
		mode encoding.Mode
		exp  string
	}{
		{mode: encoding.ModeText, exp: "FOOD: apple"},
		{mode: encoding.ModeJSON, exp: "{\n\t\"name\": \"apple\",\n\t\"calories\": 52\n}"},
		{mode: encoding.ModeYAML, exp: "name: apple # Food name\ncalories: 52 # Calories per portion\n"},
		{mode: encoding.ModeTOML, exp: "name = \"apple\"\ncalories = 52.0\n"},
	}
	for _, tc := range tcases {
		t.Run(tc.mode, func(t *testing.T) {
			e, err := encoding.Predefined(tc.mode, Food{})
			require.NoError(t, err)

			bs, err := e.Marshal(food)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, string(bs))
		})
	}
}

func Test_YAML_FormatInstructions(t *testing.T) {
	e, err := encoding.Predefined(encoding.ModeYAML, Food{})
	require.NoError(t, err)

	exp := `
The output is YAML in the following format:
` + "```yaml" + `
name: apple # Food name
calories: 52 # Calories per portion
` + "```\n"
	assert.Equal(t, exp, e.GetFormatInstructions())
}

func Test_TOML_FormatInstructions(t *testing.T) {
	e, err := encoding.Predefined(encoding.ModeTOML, Food{})
	require.NoError(t, err)

	exp := `
The output is TOML in the following format:
` + "```toml" + `
name = "apple"
calories = 52.0
` + "```\n"
	assert.Equal(t, exp, e.GetFormatInstructions())
}
